package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/haloschema/guerilla-tagdef/dump"
	"github.com/haloschema/guerilla-tagdef/internal/log"
	"github.com/haloschema/guerilla-tagdef/ir"
	"github.com/haloschema/guerilla-tagdef/peview"
	"github.com/haloschema/guerilla-tagdef/walker"
)

var logger = log.NewHelper(log.NewFilter(log.NewStdLogger(os.Stderr), log.FilterLevel(log.LevelWarn)))

// runDump implements the dump subcommand's contract end to end: read
// inputPath, recover the schema, write the JSON document to outPath.
// Per spec.md §6/§7, either the full document is produced atomically
// or nothing is written; every failure is reported with one of a
// fixed set of diagnostic messages.
func runDump(inputPath, outPath string, verbose bool) error {
	logger.Debugf("processing %s", inputPath)

	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("Can't read %s", inputPath)
	}
	defer f.Close()

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return fmt.Errorf("Can't read %s", inputPath)
	}
	defer data.Unmap()

	view, err := peview.Parse(data)
	if err != nil {
		return diagnose(err)
	}
	if view.HasVersion {
		logger.Debugf("detected guerilla.exe version %s", view.Version)
	}

	doc, err := walker.Walk(view, data)
	if err != nil {
		return diagnose(err)
	}

	warnUnknownFields(doc)

	if verbose {
		printSummary(doc)
	}

	out, err := dump.Marshal(doc)
	if err != nil {
		return errors.New("Failed! The exe might not be correct.")
	}

	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return fmt.Errorf("Can't write %s", outPath)
	}

	return nil
}

// diagnose maps a peview/walker failure to one of spec.md §6's fixed
// diagnostic messages.
func diagnose(err error) error {
	switch {
	case errors.Is(err, peview.ErrNotAPEFile), errors.Is(err, peview.ErrTinyFile), errors.Is(err, peview.ErrInvalidElfanew):
		return errors.New("Not a PE file")
	case errors.Is(err, peview.ErrUnsupportedMachine64):
		return errors.New("Not a i386 exe (it's 64-bit x86!)")
	case errors.Is(err, peview.ErrPE32Plus):
		return errors.New("Can't handle PE32+")
	case errors.Is(err, peview.ErrUnknownOptionalHeaderMagic), errors.Is(err, peview.ErrUnsupportedMachine):
		return errors.New("Unknown PE32/PE32+ type")
	default:
		return errors.New("Failed! The exe might not be correct.")
	}
}

// warnUnknownFields prints spec.md §6's "Unknown field type 0x%04X"
// diagnostic for every tolerated-but-unrecognized field kind, per
// spec.md §7's "tolerated oddities" category. It never aborts the
// dump.
func warnUnknownFields(doc *ir.Document) {
	for _, g := range doc.Groups {
		warnUnknownFieldsInBlock(g.RootBlock)
	}
}

// printSummary writes a tabular one-line-per-group overview to
// stdout, in the teacher's cmd/pedumper.go tabwriter style. It is
// purely a human-facing convenience; the JSON file is the real
// output.
func printSummary(doc *ir.Document) {
	names := make([]string, 0, len(doc.Groups))
	for name := range doc.Groups {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 1, 1, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "GROUP\tFOURCC\tSUPERGROUP\tFIELDS\t")
	for _, name := range names {
		g := doc.Groups[name]
		supergroup := "-"
		if g.Supergroup != nil {
			supergroup = *g.Supergroup
		}
		fmt.Fprintf(w, "%s\t0x%08X\t%s\t%d\t\n", g.Name, g.FourCC, supergroup, len(g.RootBlock.Fields))
	}
	w.Flush()

	for _, name := range names {
		printFieldTable(doc.Groups[name])
	}
}

// printFieldTable writes one row per top-level field of g's root
// block, using ir.FieldKind.String() for the human-readable kind
// column.
func printFieldTable(g ir.Group) {
	if len(g.RootBlock.Fields) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", g.Name)
	w := tabwriter.NewWriter(os.Stdout, 1, 1, 3, ' ', 0)
	for _, f := range g.RootBlock.Fields {
		name := "-"
		if f.Name != nil {
			name = f.Name.Name
		}
		fmt.Fprintf(w, "  %s\t%s\t\n", name, f.Kind.String())
	}
	w.Flush()
}

func warnUnknownFieldsInBlock(b ir.Block) {
	for _, f := range b.Fields {
		if f.Kind.Kind == ir.KindUnknown {
			logger.Warnf("Unknown field type 0x%04X", f.Kind.RawTypeNumber)
		}
		if f.Kind.Kind == ir.KindBlock && f.Kind.Block != nil {
			warnUnknownFieldsInBlock(*f.Kind.Block)
		}
	}
}
