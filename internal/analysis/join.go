// Package analysis joins a building's two load series and flags hours of
// simultaneous heating and cooling.
package analysis

import (
	"time"

	"simulcheck/internal/workbook"
)

// JoinedRow is one timestamp present in both series, with the threshold
// flags applied.
type JoinedRow struct {
	Timestamp    time.Time `json:"datetime"`
	CHW          float64   `json:"chw"`
	MTHW         float64   `json:"mthw"`
	CHWOn        bool      `json:"chw_on"`
	MTHWOn       bool      `json:"mthw_on"`
	Simultaneous bool      `json:"simultaneous"`
}

// Result is the outcome of one analysis run for a building and threshold.
type Result struct {
	Building     string      `json:"building"`
	Threshold    float64     `json:"threshold"`
	Rows         []JoinedRow `json:"rows"`
	Simultaneous []JoinedRow `json:"simultaneous_rows"`
	Count        int         `json:"count"`
}

// Join inner-joins two sorted sample slices on exact timestamp equality
// using a two-pointer merge. Timestamps present in only one series are
// silently excluded; an empty intersection yields an empty slice.
func Join(chw, mthw []workbook.Sample) []JoinedRow {
	rows := make([]JoinedRow, 0, min(len(chw), len(mthw)))

	i, j := 0, 0
	for i < len(chw) && j < len(mthw) {
		switch {
		case chw[i].Timestamp.Before(mthw[j].Timestamp):
			i++
		case mthw[j].Timestamp.Before(chw[i].Timestamp):
			j++
		default:
			rows = append(rows, JoinedRow{
				Timestamp: chw[i].Timestamp,
				CHW:       chw[i].Value,
				MTHW:      mthw[j].Value,
			})
			i++
			j++
		}
	}
	return rows
}

// Apply computes the threshold flags over joined rows and collects the
// simultaneous subset. The comparison is strictly greater-than: a load
// exactly at the threshold is not "on".
func Apply(building string, rows []JoinedRow, threshold float64) *Result {
	res := &Result{
		Building:     building,
		Threshold:    threshold,
		Rows:         make([]JoinedRow, 0, len(rows)),
		Simultaneous: []JoinedRow{},
	}

	for _, r := range rows {
		r.CHWOn = r.CHW > threshold
		r.MTHWOn = r.MTHW > threshold
		r.Simultaneous = r.CHWOn && r.MTHWOn
		res.Rows = append(res.Rows, r)
		if r.Simultaneous {
			res.Simultaneous = append(res.Simultaneous, r)
		}
	}
	res.Count = len(res.Simultaneous)
	return res
}
