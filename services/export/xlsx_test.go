package exportsvc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/akademik/core/student"
)

func TestStudents(t *testing.T) {
	students := []student.Student{
		{ID: 1, NIM: "001", Name: "Ana", Email: "ana@test.id", Major: "Sistem Informasi", Batch: null.IntFrom(2021), Status: student.StatusActive},
		{ID: 2, NIM: "002", Name: "Budi", Major: "Teknologi Informasi", Status: student.StatusDropout},
	}

	var buf bytes.Buffer
	require.NoError(t, Students(&buf, students))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{StudentsSheet}, f.GetSheetList())
	rows, err := f.GetRows(StudentsSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"ID", "NIM", "Name", "Email", "Major", "Batch", "Status"},
		{"1", "001", "Ana", "ana@test.id", "Sistem Informasi", "2021", "Active"},
		{"2", "002", "Budi", "", "Teknologi Informasi", "", "Dropout"},
	}, rows)
}

func TestStudents_empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Students(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(StudentsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
