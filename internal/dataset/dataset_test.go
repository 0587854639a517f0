package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gamestats/internal/awards"
	gerr "gamestats/internal/errors"
	"gamestats/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func write(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func fixture(t *testing.T) string {
	dir := t.TempDir()
	write(t, dir, "Q1_CLEAN.csv", "Title,Month,Day,Developer(s),Ref.\nElden Ring,2,25,FromSoftware,[1]\nStray,7,19,BlueTwelve,[2]\n")
	write(t, dir, "Q2_CLEAN.csv", "Title,Month,Day,Developer(s),Ref.\nBayonetta 3,10,28,PlatinumGames,[3]\nTotals,,,,\n")
	write(t, dir, "notes.csv", "ignored\n")
	write(t, dir, "cleaned_file.csv", "Title,Year,GOTY,Art\nh,h,,\nh,h,,\nElden Ring,2022,Won,Won\nStray,2022,—,Won\n")
	return dir
}

func opts(dir string) Options {
	return Options{
		DataDir:         dir,
		Pattern:         "*CLEAN.csv",
		DropColumns:     []string{"Ref."},
		AwardsPath:      filepath.Join(dir, "cleaned_file.csv"),
		Awards:          awards.DefaultOptions(),
		TitleColumn:     "Title",
		TargetColumn:    "Awards",
		DropTrailingRow: true,
		Parallelism:     2,
	}
}

func TestBuildJoinsAndDropsTrailingRow(t *testing.T) {
	ds, err := Build(context.Background(), opts(fixture(t)), nil)
	require.NoError(t, err)
	assert.Len(t, ds.Files, 2)
	assert.Equal(t, []string{"Title", "Month", "Day", "Developer(s)", "Awards"}, ds.Table.Header)
	assert.Equal(t, [][]string{
		{"Elden Ring", "2", "25", "FromSoftware", "2"},
		{"Stray", "7", "19", "BlueTwelve", "1"},
		{"Bayonetta 3", "10", "28", "PlatinumGames", "0"},
	}, ds.Table.Rows)
	assert.Equal(t, 2, ds.Matched)
}

func TestBuildKeepsTrailingRowWhenDisabled(t *testing.T) {
	o := opts(fixture(t))
	o.DropTrailingRow = false
	ds, err := Build(context.Background(), o, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Table.Len())
}

func TestJoinOneRowPerReleaseRow(t *testing.T) {
	rel := &table.Table{Header: []string{"Title"}, Rows: [][]string{{"A"}, {"A"}, {"B"}}}
	counts := awards.Counts{"A": 3}
	once, _, err := JoinAwards(rel, "Title", "Awards", counts)
	require.NoError(t, err)
	assert.Equal(t, rel.Len(), once.Len())

	// joining the joined table again must not grow it either
	twice, _, err := JoinAwards(once, "Title", "Awards2", counts)
	require.NoError(t, err)
	assert.Equal(t, rel.Len(), twice.Len())
	assert.Equal(t, []string{"A", "3", "3"}, twice.Rows[0])
}

func TestJoinRejectsExistingTarget(t *testing.T) {
	rel := &table.Table{Header: []string{"Title", "Awards"}}
	_, _, err := JoinAwards(rel, "Title", "Awards", awards.Counts{})
	assert.Equal(t, gerr.CodeInvalidInput, gerr.CodeOf(err))
}

func TestBuildErrors(t *testing.T) {
	empty := t.TempDir()
	_, err := Build(context.Background(), opts(empty), nil)
	assert.Equal(t, gerr.CodeIO, gerr.CodeOf(err), "no matching files")

	dir := t.TempDir()
	write(t, dir, "Q1_CLEAN.csv", "Title,Month\nA,1\n")
	write(t, dir, "cleaned_file.csv", "Title,Y,G\n")
	_, err = Build(context.Background(), opts(dir), nil)
	assert.Equal(t, gerr.CodeSchema, gerr.CodeOf(err), "missing Ref.")

	o := opts(dir)
	o.DropColumns = nil
	o.AwardsPath = filepath.Join(dir, "absent.csv")
	_, err = Build(context.Background(), o, nil)
	assert.Equal(t, gerr.CodeIO, gerr.CodeOf(err), "missing awards file")
}

func TestLoadReleasesLogsFileFields(t *testing.T) {
	dir := fixture(t)
	core, logs := observer.New(zapcore.DebugLevel)

	_, files, err := LoadReleases(context.Background(), dir, "*CLEAN.csv", nil, 2, zap.New(core))
	require.NoError(t, err)
	require.Len(t, files, 2)
	entries := logs.FilterMessage("read release file").All()
	require.Len(t, entries, 2)
	var seen []string
	for _, e := range entries {
		seen = append(seen, e.ContextMap()["file"].(string))
	}
	assert.ElementsMatch(t, files, seen)
}
