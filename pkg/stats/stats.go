// Package stats collects timing and compression metrics across runs.
//
// [DebugInfo] describes one compression run; [Statistics] aggregates
// many of them with element-wise min, max and mean; [StatWriter] is a
// mutex-guarded line writer so that concurrent evaluation workers can
// share one output file. The stat writer is the only part of this module
// that tolerates concurrent use.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"sync"
)

// StatWriter appends lines to an output file under a lock. All
// operations on an unopened writer are silently dropped, so callers can
// wire one unconditionally and only open it when the user asked for the
// dump.
type StatWriter struct {
	mu  sync.Mutex
	out io.WriteCloser
}

// Open starts writing to the named file, replacing any previous target.
func (w *StatWriter) Open(filename string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if w.out != nil {
		w.out.Close()
	}
	w.out = f
	return nil
}

// Close flushes and closes the underlying file, if open.
func (w *StatWriter) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.out != nil {
		w.out.Close()
		w.out = nil
	}
}

// Write appends data as one line. Writes to an unopened writer are
// dropped.
func (w *StatWriter) Write(data string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.out == nil {
		return
	}
	fmt.Fprintln(w.out, data)
}

// DebugInfo holds the metrics of a single compression run. Durations are
// in milliseconds to match the dump format.
type DebugInfo struct {
	GenerationDuration float64 // tree parse or generation time
	MergeDuration      float64 // top tree construction time
	DagDuration        float64 // DAG folding time
	MinEdgeRatio       float64
	MaxEdgeRatio       float64
	EdgeRatios         float64 // sum of all per-round ratios
	NumEdgeRatios      int
	NumDagEdges        int
	NumDagNodes        int
	Height             int
	AvgDepth           float64
}

// NewDebugInfo returns a DebugInfo ready to accumulate edge ratios.
func NewDebugInfo() *DebugInfo {
	return &DebugInfo{MinEdgeRatio: 9.99}
}

// TotalDuration returns the time spent on the actual pipeline,
// excluding statistics bookkeeping.
func (d *DebugInfo) TotalDuration() float64 {
	return d.GenerationDuration + d.MergeDuration + d.DagDuration
}

// AddEdgeRatio records the edge ratio of one constructor round.
func (d *DebugInfo) AddEdgeRatio(ratio float64) {
	d.NumEdgeRatios++
	d.EdgeRatios += ratio
	if ratio < d.MinEdgeRatio {
		d.MinEdgeRatio = ratio
	}
	if ratio > d.MaxEdgeRatio {
		d.MaxEdgeRatio = ratio
	}
}

// AvgEdgeRatio returns the mean per-round edge ratio.
func (d *DebugInfo) AvgEdgeRatio() float64 {
	if d.NumEdgeRatios == 0 {
		return 0
	}
	return d.EdgeRatios / float64(d.NumEdgeRatios)
}

// Add accumulates another run into this one, for averaging.
func (d *DebugInfo) Add(o *DebugInfo) {
	d.GenerationDuration += o.GenerationDuration
	d.MergeDuration += o.MergeDuration
	d.DagDuration += o.DagDuration
	d.EdgeRatios += o.EdgeRatios
	d.NumEdgeRatios += o.NumEdgeRatios
	d.NumDagEdges += o.NumDagEdges
	d.NumDagNodes += o.NumDagNodes
	d.Height += o.Height
	d.AvgDepth += o.AvgDepth
}

// Min keeps the element-wise minimum of this run and o.
func (d *DebugInfo) Min(o *DebugInfo) {
	d.GenerationDuration = math.Min(d.GenerationDuration, o.GenerationDuration)
	d.MergeDuration = math.Min(d.MergeDuration, o.MergeDuration)
	d.DagDuration = math.Min(d.DagDuration, o.DagDuration)
	d.MinEdgeRatio = math.Min(d.MinEdgeRatio, o.MinEdgeRatio)
	d.NumDagEdges = min(d.NumDagEdges, o.NumDagEdges)
	d.NumDagNodes = min(d.NumDagNodes, o.NumDagNodes)
	d.Height = min(d.Height, o.Height)
	d.AvgDepth = math.Min(d.AvgDepth, o.AvgDepth)
}

// Max keeps the element-wise maximum of this run and o.
func (d *DebugInfo) Max(o *DebugInfo) {
	d.GenerationDuration = math.Max(d.GenerationDuration, o.GenerationDuration)
	d.MergeDuration = math.Max(d.MergeDuration, o.MergeDuration)
	d.DagDuration = math.Max(d.DagDuration, o.DagDuration)
	d.MaxEdgeRatio = math.Max(d.MaxEdgeRatio, o.MaxEdgeRatio)
	d.NumDagEdges = max(d.NumDagEdges, o.NumDagEdges)
	d.NumDagNodes = max(d.NumDagNodes, o.NumDagNodes)
	d.Height = max(d.Height, o.Height)
	d.AvgDepth = math.Max(d.AvgDepth, o.AvgDepth)
}

// Divide scales the additive fields down by factor, for computing means.
func (d *DebugInfo) Divide(factor int) {
	f := float64(factor)
	d.GenerationDuration /= f
	d.MergeDuration /= f
	d.DagDuration /= f
	d.NumDagEdges /= factor
	d.NumDagNodes /= factor
	d.Height /= factor
	d.AvgDepth /= f
}

// Dump writes the run as one tab-separated row in the column order of
// [DumpHeader].
func (d *DebugInfo) Dump(w io.Writer) {
	fmt.Fprintf(w, "%g\t%g\t%g\t%g\t%g\t%g\t%g\t%d\t%d\t%d\t%g\n",
		d.TotalDuration(),
		d.GenerationDuration,
		d.MergeDuration,
		d.DagDuration,
		d.MinEdgeRatio,
		d.MaxEdgeRatio,
		d.AvgEdgeRatio(),
		d.NumDagEdges,
		d.NumDagNodes,
		d.Height,
		d.AvgDepth)
}

// Row returns the tab-separated row as a string, for [StatWriter].
func (d *DebugInfo) Row() string {
	return fmt.Sprintf("%g\t%g\t%g\t%g\t%g\t%g\t%g\t%d\t%d\t%d\t%g",
		d.TotalDuration(),
		d.GenerationDuration,
		d.MergeDuration,
		d.DagDuration,
		d.MinEdgeRatio,
		d.MaxEdgeRatio,
		d.AvgEdgeRatio(),
		d.NumDagEdges,
		d.NumDagNodes,
		d.Height,
		d.AvgDepth)
}

// DumpHeader writes the tab-separated column names.
func DumpHeader(w io.Writer) {
	fmt.Fprintln(w, Header())
}

// Header returns the tab-separated column names.
func Header() string {
	return "totalDuration\tgenerationDuration\tmergeDuration\tdagDuration\t" +
		"minEdgeRatio\tmaxEdgeRatio\tavgEdgeRatio\tnumDagEdges\tnumDagNodes\theight\tavgDepth"
}

// Statistics aggregates runs and optionally streams them to writers:
// every edge ratio to ratioWriter, every run row to infoWriter.
type Statistics struct {
	MinInfo, MaxInfo, AvgInfo DebugInfo

	numRuns     int
	ratioWriter *StatWriter
	infoWriter  *StatWriter
}

// NewStatistics creates an aggregator. Either filename may be empty to
// skip that dump.
func NewStatistics(edgeRatioFile, debugInfoFile string) (*Statistics, error) {
	s := &Statistics{ratioWriter: &StatWriter{}, infoWriter: &StatWriter{}}
	if edgeRatioFile != "" {
		if err := s.ratioWriter.Open(edgeRatioFile); err != nil {
			return nil, err
		}
	}
	if debugInfoFile != "" {
		if err := s.infoWriter.Open(debugInfoFile); err != nil {
			return nil, err
		}
		s.infoWriter.Write(Header())
	}
	return s, nil
}

// AddEdgeRatio streams one per-round ratio to the ratio dump.
func (s *Statistics) AddEdgeRatio(ratio float64) {
	s.ratioWriter.Write(fmt.Sprintf("%g", ratio))
}

// AddDebugInfo folds one run into the aggregate.
func (s *Statistics) AddDebugInfo(info *DebugInfo) {
	if s.numRuns == 0 {
		s.MinInfo, s.MaxInfo, s.AvgInfo = *info, *info, *info
	} else {
		s.MinInfo.Min(info)
		s.MaxInfo.Max(info)
		s.AvgInfo.Add(info)
	}
	s.infoWriter.Write(info.Row())
	s.numRuns++
}

// Compute finalizes the mean. Call once, after the last AddDebugInfo.
func (s *Statistics) Compute() {
	if s.numRuns > 0 {
		s.AvgInfo.Divide(s.numRuns)
	}
}

// NumRuns returns the number of aggregated runs.
func (s *Statistics) NumRuns() int { return s.numRuns }

// Close releases the dump writers.
func (s *Statistics) Close() {
	s.ratioWriter.Close()
	s.infoWriter.Close()
}

// Dump writes a human-readable summary of the aggregate.
func (s *Statistics) Dump(w io.Writer) {
	fmt.Fprintf(w, "\nStatistics over %d runs:\n\n", s.numRuns)
	fmt.Fprintf(w, "Total duration p. tree: %.2fms (avg), %.2fms (min), %.2fms (max)\n",
		s.AvgInfo.TotalDuration(), s.MinInfo.TotalDuration(), s.MaxInfo.TotalDuration())
	fmt.Fprintf(w, "Tree generation:        %.2fms (avg), %.2fms (min), %.2fms (max)\n",
		s.AvgInfo.GenerationDuration, s.MinInfo.GenerationDuration, s.MaxInfo.GenerationDuration)
	fmt.Fprintf(w, "Top tree construction:  %.2fms (avg), %.2fms (min), %.2fms (max)\n",
		s.AvgInfo.MergeDuration, s.MinInfo.MergeDuration, s.MaxInfo.MergeDuration)
	fmt.Fprintf(w, "Top DAG compression:    %.2fms (avg), %.2fms (min), %.2fms (max)\n",
		s.AvgInfo.DagDuration, s.MinInfo.DagDuration, s.MaxInfo.DagDuration)
	fmt.Fprintf(w, "Edge comp. ratio: %.6f (avg), %.6f (min), %.6f (max)\n",
		s.AvgInfo.AvgEdgeRatio(), s.MinInfo.MinEdgeRatio, s.MaxInfo.MaxEdgeRatio)
	fmt.Fprintf(w, "DAG edges: %d (avg), %d (min), %d (max)\n",
		s.AvgInfo.NumDagEdges, s.MinInfo.NumDagEdges, s.MaxInfo.NumDagEdges)
	fmt.Fprintf(w, "DAG nodes: %d (avg), %d (min), %d (max)\n",
		s.AvgInfo.NumDagNodes, s.MinInfo.NumDagNodes, s.MaxInfo.NumDagNodes)
	fmt.Fprintf(w, "Tree height:    %d (avg), %d (min), %d (max)\n",
		s.AvgInfo.Height, s.MinInfo.Height, s.MaxInfo.Height)
	fmt.Fprintf(w, "Avg node depth: %.2f (avg), %.2f (min), %.2f (max)\n",
		s.AvgInfo.AvgDepth, s.MinInfo.AvgDepth, s.MaxInfo.AvgDepth)
}
