package exportsvc

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/akademik/core/student"
)

const StudentsSheet = "Students"

var studentHeaders = []interface{}{"ID", "NIM", "Name", "Email", "Major", "Batch", "Status"}

// Students writes `students` as an xlsx workbook: one header row then one row per student.
func Students(w io.Writer, students []student.Student) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", StudentsSheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	if err := f.SetSheetRow(StudentsSheet, "A1", &studentHeaders); err != nil {
		return errors.Wrap(err, "writing header row")
	}

	for i, s := range students {
		var batch interface{}
		if s.Batch.Valid {
			batch = s.Batch.Int
		}
		row := []interface{}{s.ID, s.NIM, s.Name, s.Email, s.Major, batch, student.StatusLabel(s.Status)}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrapf(err, "row %d", i+2)
		}
		if err := f.SetSheetRow(StudentsSheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing row %d", i+2)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}
