// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package input

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "\ufeffSample,Gene,Score\ns1,TP53,0.9\ns2, kras ,0.4\ns3,EGFR\n"

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name   string
		column string
		want   []string
		col    int
	}{
		{name: "default first column", column: "", want: []string{"s1", "s2", "s3"}, col: 0},
		{name: "by name", column: "gene", want: []string{"TP53", "kras ", "EGFR"}, col: 1},
		{name: "by number", column: "3", want: []string{"0.9", "0.4", ""}, col: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ReadCSV(strings.NewReader(sampleCSV), ',', tt.column)
			require.NoError(t, err)
			assert.Equal(t, tt.col, s.Column)
			assert.Equal(t, tt.want, s.Genes())
		})
	}
}

func TestReadCSV_HeaderAndPadding(t *testing.T) {
	s, err := ReadCSV(strings.NewReader(sampleCSV), ',', "Gene")
	require.NoError(t, err)

	assert.Equal(t, []string{"Sample", "Gene", "Score"}, s.Header)
	assert.Equal(t, "Gene", s.ColumnName())
	assert.Equal(t, []string{"s3", "EGFR", ""}, s.Rows[2])
}

func TestReadCSV_UnknownColumn(t *testing.T) {
	for _, col := range []string{"symbol", "0", "4", "2x"} {
		_, err := ReadCSV(strings.NewReader(sampleCSV), ',', col)
		assert.ErrorIs(t, err, ErrUnknownColumn, col)
	}
}

func TestReadCSV_Empty(t *testing.T) {
	s, err := ReadCSV(strings.NewReader(""), ',', "")
	require.NoError(t, err)
	assert.Empty(t, s.Genes())
}

func TestReadList(t *testing.T) {
	s, err := ReadList(strings.NewReader("# panel\nTP53, KRAS\n\nEGFR\tBRAF;ALK\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"TP53", "KRAS", "EGFR", "BRAF", "ALK"}, s.Genes())
	assert.Nil(t, s.Header)
	assert.Equal(t, "Gene", s.ColumnName())
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}

	s, err := ReadFile(write("genes.tsv", "gene\tnote\nTP53\tsuppressor\n"), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"TP53"}, s.Genes())

	s, err = ReadFile(write("genes.CSV", "a,gene\n1,BRCA1\n"), "gene")
	require.NoError(t, err)
	assert.Equal(t, []string{"BRCA1"}, s.Genes())

	s, err = ReadFile(write("genes.txt", "MYC\n"), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"MYC"}, s.Genes())

	_, err = ReadFile(filepath.Join(dir, "missing.csv"), "")
	assert.Error(t, err)
}
