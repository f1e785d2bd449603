package stats

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestHeader(t *testing.T) {
	want := "totalDuration\tgenerationDuration\tmergeDuration\tdagDuration\t" +
		"minEdgeRatio\tmaxEdgeRatio\tavgEdgeRatio\tnumDagEdges\tnumDagNodes\theight\tavgDepth"
	if got := Header(); got != want {
		t.Fatalf("Header() = %q, want %q", got, want)
	}
}

func TestDebugInfoEdgeRatios(t *testing.T) {
	info := NewDebugInfo()
	for _, r := range []float64{2.0, 1.5, 3.0} {
		info.AddEdgeRatio(r)
	}
	if got := info.MinEdgeRatio; got != 1.5 {
		t.Errorf("MinEdgeRatio = %g, want 1.5", got)
	}
	if got := info.MaxEdgeRatio; got != 3.0 {
		t.Errorf("MaxEdgeRatio = %g, want 3", got)
	}
	if got := info.AvgEdgeRatio(); got != 6.5/3 {
		t.Errorf("AvgEdgeRatio = %g, want %g", got, 6.5/3)
	}
}

func TestDebugInfoDumpColumns(t *testing.T) {
	info := NewDebugInfo()
	info.AddEdgeRatio(2)
	info.NumDagNodes = 7
	info.NumDagEdges = 12
	info.Height = 3
	info.AvgDepth = 1.5

	var buf bytes.Buffer
	info.Dump(&buf)
	row := strings.TrimSuffix(buf.String(), "\n")
	cols := strings.Split(row, "\t")
	headerCols := strings.Split(Header(), "\t")
	if len(cols) != len(headerCols) {
		t.Fatalf("row has %d columns, header has %d", len(cols), len(headerCols))
	}
}

func TestStatisticsAggregation(t *testing.T) {
	s, err := NewStatistics("", "")
	if err != nil {
		t.Fatalf("NewStatistics: %v", err)
	}
	defer s.Close()

	first := NewDebugInfo()
	first.MergeDuration = 10
	first.NumDagNodes = 5
	first.AddEdgeRatio(2)

	second := NewDebugInfo()
	second.MergeDuration = 20
	second.NumDagNodes = 15
	second.AddEdgeRatio(4)

	s.AddDebugInfo(first)
	s.AddDebugInfo(second)
	s.Compute()

	if got := s.MinInfo.MergeDuration; got != 10 {
		t.Errorf("min MergeDuration = %g, want 10", got)
	}
	if got := s.MaxInfo.NumDagNodes; got != 15 {
		t.Errorf("max NumDagNodes = %d, want 15", got)
	}
	if got := s.AvgInfo.MergeDuration; got != 15 {
		t.Errorf("avg MergeDuration = %g, want 15", got)
	}
	if got := s.AvgInfo.NumDagNodes; got != 10 {
		t.Errorf("avg NumDagNodes = %d, want 10", got)
	}
	if got := s.NumRuns(); got != 2 {
		t.Errorf("NumRuns = %d, want 2", got)
	}
}

func TestStatisticsDumpFiles(t *testing.T) {
	dir := t.TempDir()
	ratioFile := filepath.Join(dir, "ratios.tsv")
	infoFile := filepath.Join(dir, "info.tsv")

	s, err := NewStatistics(ratioFile, infoFile)
	if err != nil {
		t.Fatalf("NewStatistics: %v", err)
	}
	s.AddEdgeRatio(1.5)
	info := NewDebugInfo()
	info.AddEdgeRatio(1.5)
	s.AddDebugInfo(info)
	s.Close()

	ratios, err := os.ReadFile(ratioFile)
	if err != nil {
		t.Fatalf("read ratios: %v", err)
	}
	if strings.TrimSpace(string(ratios)) != "1.5" {
		t.Errorf("ratio dump = %q, want 1.5", ratios)
	}

	infoData, err := os.ReadFile(infoFile)
	if err != nil {
		t.Fatalf("read info: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(infoData)), "\n")
	if len(lines) != 2 {
		t.Fatalf("info dump has %d lines, want header + 1 row", len(lines))
	}
	if lines[0] != Header() {
		t.Errorf("info dump header = %q", lines[0])
	}
}

func TestStatWriterUnopenedDropsWrites(t *testing.T) {
	var w StatWriter
	w.Write("dropped")
	w.Close()
}

func TestStatWriterConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.tsv")
	var w StatWriter
	if err := w.Open(path); err != nil {
		t.Fatalf("Open: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				w.Write("row")
			}
		}()
	}
	wg.Wait()
	w.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 800 {
		t.Fatalf("wrote %d lines, want 800", len(lines))
	}
}
