package jobs

import (
	"errors"
	"fmt"
	"os"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"gopkg.in/yaml.v3"
)

const clockLayout = "15:04"

// OutletSchedule holds the daily open and close times of one outlet, as
// minutes after midnight in the business timezone.
type OutletSchedule struct {
	OutletID kernel.UUID
	Open     int
	Close    int
}

// OpenAt returns the open time of date.
func (s OutletSchedule) OpenAt(date kernel.Date, loc *time.Location) time.Time {
	return date.At(s.Open/60, s.Open%60, loc)
}

// CloseAt returns the close time of date.
func (s OutletSchedule) CloseAt(date kernel.Date, loc *time.Location) time.Time {
	return date.At(s.Close/60, s.Close%60, loc)
}

type scheduleFile struct {
	Outlets []struct {
		Outlet string `yaml:"outlet"`
		Open   string `yaml:"open"`
		Close  string `yaml:"close"`
	} `yaml:"outlets"`
}

// LoadSchedule reads the outlet schedule file. An empty path yields an empty schedule.
//
// Example file:
//
//	outlets:
//	  - outlet: 6f1c2f0e-3f5a-4c1e-9d59-5b1f7e0e8a10
//	    open: "08:00"
//	    close: "20:30"
func LoadSchedule(path string) ([]OutletSchedule, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shift schedule: %w", err)
	}
	return ParseSchedule(raw)
}

func ParseSchedule(raw []byte) ([]OutletSchedule, error) {
	var file scheduleFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse shift schedule: %w", err)
	}

	seen := make(map[kernel.UUID]struct{}, len(file.Outlets))
	out := make([]OutletSchedule, 0, len(file.Outlets))
	var errList []error
	for i, entry := range file.Outlets {
		id, err := kernel.UUIDFromString(entry.Outlet)
		if err != nil {
			errList = append(errList, fmt.Errorf("outlets[%d]: %w", i, err))
			continue
		}
		if _, dup := seen[id]; dup {
			errList = append(errList, fmt.Errorf("outlets[%d]: duplicate outlet %s", i, id))
			continue
		}
		open, err := parseClock(entry.Open)
		if err != nil {
			errList = append(errList, fmt.Errorf("outlets[%d]: open: %w", i, err))
			continue
		}
		closing, err := parseClock(entry.Close)
		if err != nil {
			errList = append(errList, fmt.Errorf("outlets[%d]: close: %w", i, err))
			continue
		}
		if closing <= open {
			errList = append(errList, fmt.Errorf("outlets[%d]: %w", i,
				errs.NewValueIsInvalidError("close must be after open")))
			continue
		}
		seen[id] = struct{}{}
		out = append(out, OutletSchedule{OutletID: id, Open: open, Close: closing})
	}
	if len(errList) > 0 {
		return nil, errors.Join(errList...)
	}
	return out, nil
}

func parseClock(v string) (int, error) {
	t, err := time.Parse(clockLayout, v)
	if err != nil {
		return 0, errs.NewValueIsInvalidErrorWithCause("clock time "+v, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
