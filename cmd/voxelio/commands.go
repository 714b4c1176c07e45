package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/janelia-flyem/voxelio/config"
	"github.com/janelia-flyem/voxelio/convert"
	"github.com/janelia-flyem/voxelio/dvid"
	"github.com/janelia-flyem/voxelio/hyperslab"
	"github.com/janelia-flyem/voxelio/storage"
	"github.com/janelia-flyem/voxelio/volume"
)

// app runs commands against one open store.
type app struct {
	cfg *config.Config
	db  storage.OrderedKeyValueDB
	out io.Writer
}

// DoCommand serves as a switchboard for commands.
func (a *app) DoCommand(cmd dvid.Command) error {
	if len(cmd) == 0 {
		return fmt.Errorf("blank command")
	}
	switch cmd.Name() {
	case "about":
		return doAbout(a.out)
	case "create":
		return a.doCreate(cmd)
	case "info":
		return a.doInfo(cmd)
	case "get":
		return a.doGet(cmd)
	case "put-const":
		return a.doPutConst(cmd)
	case "downres":
		return a.doDownres(cmd)
	case "delete":
		return a.doDelete(cmd)
	default:
		return fmt.Errorf("unknown command %q: try 'voxelio help'", cmd.Name())
	}
}

func doAbout(w io.Writer) error {
	_, err := fmt.Fprintf(w, "voxelio volume format %s\nStorage engines: %s\n",
		volume.FormatVersion, strings.Join(storage.EnginesAvailable(), ", "))
	return err
}

func (a *app) doCreate(cmd dvid.Command) error {
	var name, specPath string
	cmd.CommandArgs(&name, &specPath)
	if name == "" || specPath == "" {
		return fmt.Errorf("usage: create <name> <spec.json>")
	}
	data, err := os.ReadFile(specPath)
	if err != nil {
		return err
	}
	spec, err := volume.ParseSpec(data)
	if err != nil {
		return err
	}
	if c, found := cmd.Parameter(dvid.KeyCompression); found {
		spec.Compression = c
	}
	v, err := volume.Create(a.db, name, spec)
	if err != nil {
		return err
	}
	defer v.Close()
	fmt.Fprintf(a.out, "Created %s with %d dimensions %v\n", v, v.NumDims(), v.Lengths())
	return nil
}

func (a *app) doInfo(cmd dvid.Command) error {
	var name string
	cmd.CommandArgs(&name)
	v, err := volume.Open(a.db, name)
	if err != nil {
		return err
	}
	defer v.Close()
	b, err := json.MarshalIndent(v.Info(), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(b))
	return err
}

// slabArgs parses the volume name, start and count shared by get and put-const, and
// opens the volume at any requested resolution.
func (a *app) slabArgs(cmd dvid.Command, usage string, extra ...*string) (v *volume.Volume, start, count []int, err error) {
	var name, startStr, countStr string
	targets := append([]*string{&name, &startStr, &countStr}, extra...)
	cmd.CommandArgs(targets...)
	if name == "" || startStr == "" || countStr == "" {
		return nil, nil, nil, fmt.Errorf("usage: %s", usage)
	}
	if start, err = dvid.PointStr(startStr).Ints(); err != nil {
		return
	}
	if count, err = dvid.PointStr(countStr).Ints(); err != nil {
		return
	}
	if v, err = volume.Open(a.db, name); err != nil {
		return
	}
	if s, found := cmd.Parameter(dvid.KeyLevel); found {
		level, perr := strconv.Atoi(s)
		if perr != nil {
			v.Close()
			return nil, nil, nil, fmt.Errorf("bad level %q: %v", s, perr)
		}
		if err = v.SelectResolution(level); err != nil {
			v.Close()
			return nil, nil, nil, err
		}
	}
	return
}

// context returns a context with the configured defaults for the command's type and
// mode settings.
func (a *app) context(cmd dvid.Command, mode string) (*hyperslab.Context, dvid.DataType, error) {
	dtype := dvid.T_float64
	if s, found := cmd.Parameter(dvid.KeyType); found {
		var err error
		if dtype, err = dvid.ParseDataType(s); err != nil {
			return nil, 0, err
		}
	}
	var scaled bool
	switch mode {
	case "", "raw":
	case "real":
		scaled = true
	default:
		return nil, 0, fmt.Errorf("mode must be 'real' or 'raw', not %q", mode)
	}
	opts, err := a.cfg.ContextOptions()
	if err != nil {
		return nil, 0, err
	}
	opts = append(opts, hyperslab.WithType(dtype), hyperslab.WithRangeScaling(scaled))
	ctx, err := hyperslab.NewContext(opts...)
	return ctx, dtype, err
}

func (a *app) doGet(cmd dvid.Command) error {
	var mode string
	v, start, count, err := a.slabArgs(cmd, "get <name> <start> <count> [real|raw]", &mode)
	if err != nil {
		return err
	}
	defer v.Close()
	ctx, dtype, err := a.context(cmd, mode)
	if err != nil {
		return err
	}
	defer ctx.Destroy()
	if err := ctx.Attach(v); err != nil {
		return err
	}
	total, err := dvid.NumElements(count)
	if err != nil {
		return err
	}
	buf := convert.Make(dtype, total)
	if err := ctx.Get(start, count, buf); err != nil {
		return err
	}
	values := make([]float64, total)
	if err := convert.Convert(values, buf, nil); err != nil {
		return err
	}
	return printRows(a.out, values, count)
}

// printRows writes values one line per run of the fastest apparent dimension.
func printRows(w io.Writer, values []float64, count []int) error {
	row := 1
	if len(count) > 0 {
		row = count[len(count)-1]
	}
	var sb strings.Builder
	for i, x := range values {
		if i%row != 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
		if (i+1)%row == 0 {
			sb.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func (a *app) doPutConst(cmd dvid.Command) error {
	var valueStr, mode string
	v, start, count, err := a.slabArgs(cmd, "put-const <name> <start> <count> <value> [real|raw]", &valueStr, &mode)
	if err != nil {
		return err
	}
	defer v.Close()
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return fmt.Errorf("bad value %q: %v", valueStr, err)
	}
	ctx, dtype, err := a.context(cmd, mode)
	if err != nil {
		return err
	}
	defer ctx.Destroy()
	if err := ctx.Attach(v); err != nil {
		return err
	}
	total, err := dvid.NumElements(count)
	if err != nil {
		return err
	}
	values := make([]float64, total)
	for i := range values {
		values[i] = value
	}
	buf := convert.Make(dtype, total)
	if err := convert.Convert(buf, values, nil); err != nil {
		return err
	}
	if err := ctx.Put(start, count, buf); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Wrote %d voxels of %s\n", total, v)
	return nil
}

func (a *app) doDownres(cmd dvid.Command) error {
	var name, levelStr string
	cmd.CommandArgs(&name, &levelStr)
	level, err := strconv.Atoi(levelStr)
	if err != nil || name == "" {
		return fmt.Errorf("usage: downres <name> <level>")
	}
	v, err := volume.Open(a.db, name)
	if err != nil {
		return err
	}
	defer v.Close()
	tlog := dvid.NewTimeLog()
	for l := v.Levels() + 1; l <= level; l++ {
		if err := v.BuildResolution(l); err != nil {
			return err
		}
	}
	tlog.Infof("Built resolutions of %s through level %d", v, level)
	fmt.Fprintf(a.out, "%s is built through level %d\n", v, v.Levels())
	return nil
}

func (a *app) doDelete(cmd dvid.Command) error {
	var name string
	cmd.CommandArgs(&name)
	if name == "" {
		return fmt.Errorf("usage: delete <name>")
	}
	if err := volume.Delete(a.db, name); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted volume %q\n", name)
	return nil
}
