package french

import (
	"panelcli/internal/config"
	"panelcli/internal/dataset"
	"panelcli/internal/errors"
)

// Combine merges the downloaded datasets into one factor table.
//
// The 3-factor table anchors the result and is required. Total market
// return is derived as excess return plus the risk-free rate. Momentum and
// the profitability/investment factors from the 5-factor file join on
// month end where available; months absent from an optional dataset get
// empty cells.
func Combine(ff3, mom, fiveFactor *dataset.Table) (*dataset.Table, error) {
	if ff3 == nil || ff3.NumRows() == 0 {
		return nil, errors.EmptyDataset("fama-french 3 factors")
	}
	for _, col := range []string{config.ColMktRF, config.ColSMB, config.ColHML, config.ColRF} {
		if _, ok := ff3.ColumnIndex(col); !ok {
			return nil, errors.SchemaMismatch("3-factor data is missing column " + col)
		}
	}

	combined := dataset.New(
		config.ColMktRF,
		config.ColSMB,
		config.ColHML,
		config.ColRF,
		config.ColMktRet,
	)
	mktIdx, _ := ff3.ColumnIndex(config.ColMktRF)
	smbIdx, _ := ff3.ColumnIndex(config.ColSMB)
	hmlIdx, _ := ff3.ColumnIndex(config.ColHML)
	rfIdx, _ := ff3.ColumnIndex(config.ColRF)

	for _, row := range ff3.Rows() {
		mktRF := row.Cells[mktIdx]
		rf := row.Cells[rfIdx]
		mktRet := dataset.Empty
		if mktRF.Valid && rf.Valid {
			mktRet = dataset.Float(mktRF.Value + rf.Value)
		}
		err := combined.Upsert(row.Date, mktRF, row.Cells[smbIdx], row.Cells[hmlIdx], rf, mktRet)
		if err != nil {
			return nil, err
		}
	}

	if mom != nil && mom.NumRows() > 0 {
		momOnly := selectColumns(mom, config.ColMom)
		if momOnly.NumRows() > 0 {
			joined, err := combined.LeftJoin(momOnly)
			if err != nil {
				return nil, err
			}
			combined = joined
		}
	}

	if fiveFactor != nil && fiveFactor.NumRows() > 0 {
		extras := selectColumns(fiveFactor, config.ColRMW, config.ColCMA)
		if len(extras.Columns()) > 0 {
			joined, err := combined.LeftJoin(extras)
			if err != nil {
				return nil, err
			}
			combined = joined
		}
	}

	return combined, nil
}

// selectColumns projects a table onto the named columns, dropping names the
// table does not have.
func selectColumns(t *dataset.Table, names ...string) *dataset.Table {
	var cols []string
	var idx []int
	for _, name := range names {
		if i, ok := t.ColumnIndex(name); ok {
			cols = append(cols, name)
			idx = append(idx, i)
		}
	}
	out := dataset.New(cols...)
	if len(cols) == 0 {
		return out
	}
	for _, row := range t.Rows() {
		cells := make([]dataset.Cell, len(idx))
		for j, i := range idx {
			cells[j] = row.Cells[i]
		}
		out.Upsert(row.Date, cells...)
	}
	return out
}
