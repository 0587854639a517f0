package releases

import (
	"bytes"
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gerr "gamestats/internal/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const header = "Title,Month,Day,Platform(s),Genre(s),Developer(s),Publisher(s),Ref.\n"

func writeCSV(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRunTwoFilesScenario(t *testing.T) {
	dir := t.TempDir()
	a := writeCSV(t, dir, "q1.csv", header+`G1,1,2,Win,Action,"A; B",P,[1]`+"\n")
	b := writeCSV(t, dir, "q2.csv", header+"G2,4,5,PS5,RPG,A,P,[2]\n")

	res, err := Run(context.Background(), Options{Paths: []string{a, b}, Column: ColumnDevelopers, Separator: "; ", Top: 5}, nil)
	require.NoError(t, err)
	assert.Equal(t, Entry{Name: "A", Count: 2}, res.Winner)
	assert.Equal(t, []Entry{{"A", 2}, {"B", 1}}, res.Top)
	assert.Equal(t, 3, res.Pairs)
	assert.Equal(t, 2, res.Records)

	records, err := LoadAll(context.Background(), []string{a, b}, "; ", ColumnDevelopers, 2, nil)
	require.NoError(t, err)
	if diff := cmp.Diff(map[string]int{"A": 2, "B": 1}, Count(records, func(r Record) []string { return r.Developers }).Map()); diff != "" {
		t.Fatalf("tally mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadAllLogsEachFile(t *testing.T) {
	dir := t.TempDir()
	a := writeCSV(t, dir, "q1.csv", header+"G1,1,2,Win,Action,A,P,[1]\nG2,1,3,Win,Action,B,P,[2]\n")
	b := writeCSV(t, dir, "q2.csv", header+"G3,4,5,PS5,RPG,A,P,[3]\n")
	core, logs := observer.New(zapcore.DebugLevel)

	_, err := LoadAll(context.Background(), []string{a, b}, "; ", ColumnDevelopers, 1, zap.New(core))
	require.NoError(t, err)
	entries := logs.FilterMessage("loaded release file").All()
	require.Len(t, entries, 2)
	got := map[string]int64{}
	for _, e := range entries {
		ctx := e.ContextMap()
		assert.Equal(t, "load", ctx["stage"])
		got[ctx["file"].(string)] = ctx["records"].(int64)
	}
	assert.Equal(t, map[string]int64{a: 2, b: 1}, got)
}

func TestMaxMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	names := []string{"Nintendo", "Capcom", "Sega", "Atlus", "Square Enix"}
	for trial := 0; trial < 50; trial++ {
		var records []Record
		pairs := 0
		for i := 0; i < 1+rng.IntN(30); i++ {
			var devs []string
			for j := 0; j < 1+rng.IntN(3); j++ {
				devs = append(devs, names[rng.IntN(len(names))])
			}
			pairs += len(devs)
			records = append(records, Record{Developers: devs})
		}
		tally := Count(records, func(r Record) []string { return r.Developers })
		got, err := tally.Max()
		require.NoError(t, err)

		brute := map[string]int{}
		for _, r := range records {
			for _, d := range r.Developers {
				brute[d]++
			}
		}
		best := 0
		for _, c := range brute {
			if c > best {
				best = c
			}
		}
		assert.Equal(t, best, got.Count)
		assert.Equal(t, brute[got.Name], got.Count)
		assert.Equal(t, pairs, tally.Total())
	}
}

func TestMaxTieGoesToFirstSeen(t *testing.T) {
	tally := NewTally()
	for _, n := range []string{"B", "A", "A", "B"} {
		tally.Add(n)
	}
	got, err := tally.Max()
	require.NoError(t, err)
	assert.Equal(t, "B", got.Name)
	assert.Equal(t, []string{"B", "A"}, tally.Names())
}

func TestMaxEmptyIsEmptyAggregate(t *testing.T) {
	_, err := NewTally().Max()
	assert.Equal(t, gerr.CodeEmptyAggregate, gerr.CodeOf(err))
}

func TestRunHeaderOnlyFileIsEmptyAggregate(t *testing.T) {
	dir := t.TempDir()
	p := writeCSV(t, dir, "q.csv", header)
	_, err := Run(context.Background(), Options{Paths: []string{p}, Column: ColumnDevelopers, Separator: "; "}, nil)
	assert.Equal(t, gerr.CodeEmptyAggregate, gerr.CodeOf(err))
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	noCol := writeCSV(t, dir, "nocol.csv", "Title,Publisher(s)\nG,P\n")
	short := writeCSV(t, dir, "short.csv", "Title,Developer(s)\nG,A\nH\n")

	_, err := LoadRecords(filepath.Join(dir, "missing.csv"), "; ", ColumnDevelopers)
	assert.Equal(t, gerr.CodeIO, gerr.CodeOf(err))

	_, err = LoadRecords(noCol, "; ", ColumnDevelopers)
	assert.Equal(t, gerr.CodeSchema, gerr.CodeOf(err))

	_, err = LoadRecords(short, "; ", ColumnDevelopers)
	require.Error(t, err)
	assert.Equal(t, gerr.CodeSchema, gerr.CodeOf(err))
	assert.Contains(t, err.Error(), "row=3")
}

func TestRunMissingFileAbortsRun(t *testing.T) {
	dir := t.TempDir()
	ok := writeCSV(t, dir, "q1.csv", header+"G,1,1,Win,RPG,A,P,r\n")
	_, err := Run(context.Background(), Options{Paths: []string{ok, filepath.Join(dir, "q2.csv")}, Column: ColumnDevelopers, Separator: "; "}, nil)
	assert.Equal(t, gerr.CodeIO, gerr.CodeOf(err))
}

func TestSplitKeepsTokensVerbatim(t *testing.T) {
	dir := t.TempDir()
	p := writeCSV(t, dir, "q.csv", "Title,Developer(s)\n"+`G,"A;B; C"`+"\nH,\n")
	recs, err := LoadRecords(p, "; ", ColumnDevelopers)
	require.NoError(t, err)
	assert.Equal(t, []string{"A;B", "C"}, recs[0].Developers)
	assert.Equal(t, []string{""}, recs[1].Developers)
}

func TestRunPublisherColumn(t *testing.T) {
	dir := t.TempDir()
	p := writeCSV(t, dir, "q.csv", header+`G1,1,1,Win,RPG,D,"Sega; Atlus",r`+"\nG2,1,1,Win,RPG,D,Atlus,r\n")
	res, err := Run(context.Background(), Options{Paths: []string{p}, Column: ColumnPublishers, Separator: "; "}, nil)
	require.NoError(t, err)
	assert.Equal(t, Entry{Name: "Atlus", Count: 2}, res.Winner)
	assert.Len(t, res.Top, 1)
}

func TestFieldForRejectsOtherColumns(t *testing.T) {
	_, err := FieldFor("Genre(s)")
	assert.Equal(t, gerr.CodeInvalidInput, gerr.CodeOf(err))
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	res := &Result{Column: ColumnDevelopers, Records: 2, Names: 2, Winner: Entry{"A", 2}, Top: []Entry{{"A", 2}, {"B", 1}}}
	require.NoError(t, RenderText(&buf, res))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Most releases: A, released 2 times.\n"))
	assert.Contains(t, out, "Top 2 by Developer(s)")
}
