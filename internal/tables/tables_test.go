package tables

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndreySuncov/bot-exam/internal/corpus"
)

func writeTable(t *testing.T, dir string, program corpus.Program, name, content string) {
	t.Helper()

	folder := filepath.Join(dir, Folder(program))
	require.NoError(t, os.MkdirAll(folder, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(folder, name), []byte(content), 0o600))
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()

	writeTable(t, dir, corpus.ProgramAI, "table_page_1_num_1.csv",
		"Семестр,Дисциплина,ЗЕТ\n1,Машинное обучение,6\n,, \n2,\"Глубокое обучение, часть 1\",3\n")
	writeTable(t, dir, corpus.ProgramAI, "table_page_2_num_1.csv", "3,Python для анализа данных\n")
	writeTable(t, dir, corpus.ProgramAI, "notes.txt", "Python")

	rows, err := LoadAll(dir, corpus.KnownPrograms())
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"Семестр", "Дисциплина", "ЗЕТ"}, rows[0].Cells)
	assert.Equal(t, []string{"2", "Глубокое обучение, часть 1", "3"}, rows[2].Cells)
	assert.Equal(t, []string{"3", "Python для анализа данных"}, rows[3].Cells)
	assert.Equal(t, corpus.ProgramAI, rows[3].Program)
}

func TestLoadAllMalformedCSV(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, corpus.ProgramAIProduct, "table_page_1_num_1.csv", "a,\"unterminated\n")

	_, err := LoadAll(dir, corpus.KnownPrograms())
	assert.Error(t, err)
}

func TestLoadAllNoFolders(t *testing.T) {
	rows, err := LoadAll(t.TempDir(), corpus.KnownPrograms())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFindByKeyword(t *testing.T) {
	rows := []Row{
		{Cells: []string{"1", "Машинное обучение", "6"}},
		{Cells: []string{"2", "Python", "обучение с подкреплением"}},
		{Cells: []string{"3", "Менеджмент продукта", "4"}},
	}

	tests := []struct {
		keyword string
		want    int
	}{
		{keyword: "ОБУЧЕНИЕ", want: 2},
		{keyword: "python", want: 1},
		{keyword: "дизайн", want: 0},
		{keyword: "", want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			assert.Len(t, FindByKeyword(rows, tt.keyword), tt.want)
		})
	}

	// a row matching in several cells is returned once
	found := FindByKeyword(rows, "о")
	assert.Len(t, found, 3)
}
