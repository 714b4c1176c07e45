package hyperslab

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/janelia-flyem/voxelio/dvid"
	"github.com/janelia-flyem/voxelio/storage"
	_ "github.com/janelia-flyem/voxelio/storage/memory"
	"github.com/janelia-flyem/voxelio/volume"
)

func newTestDB(t *testing.T) storage.OrderedKeyValueDB {
	t.Helper()
	db, teardown, err := storage.NewTestStore("memory")
	if err != nil {
		t.Fatalf("can't create test store: %v", err)
	}
	t.Cleanup(teardown)
	return db
}

var spatialNames = []string{"zspace", "yspace", "xspace"}
var spatialClasses = []volume.DimClass{volume.ClassZ, volume.ClassY, volume.ClassX}

// testSpec names the fastest three dimensions z, y, x and any slower ones dim0, dim1...
func testSpec(kind dvid.DataType, lengths ...int) volume.Spec {
	spec := volume.Spec{DataType: kind}
	n := len(lengths)
	for i, length := range lengths {
		j := 3 - (n - i)
		if j >= 0 {
			spec.Dims = append(spec.Dims, volume.NewDim(spatialNames[j], spatialClasses[j], length))
		} else {
			spec.Dims = append(spec.Dims, volume.NewDim(fmt.Sprintf("dim%d", i), volume.ClassUser, length))
		}
	}
	return spec
}

func createVolume(t *testing.T, db storage.OrderedKeyValueDB, name string, spec volume.Spec) *volume.Volume {
	t.Helper()
	v, err := volume.Create(db, name, spec)
	if err != nil {
		t.Fatalf("can't create volume %q: %v", name, err)
	}
	return v
}

func newContext(t *testing.T, v *volume.Volume, opts ...Option) *Context {
	t.Helper()
	ctx, err := NewContext(opts...)
	if err != nil {
		t.Fatalf("bad options: %v", err)
	}
	if err := ctx.Attach(v); err != nil {
		t.Fatalf("can't attach: %v", err)
	}
	return ctx
}

func sequence(n int) []int32 {
	buf := make([]int32, n)
	for i := range buf {
		buf[i] = int32(i)
	}
	return buf
}

func TestApparentOrderAndFlip(t *testing.T) {
	db := newTestDB(t)
	v := createVolume(t, db, "scenario-a", testSpec(dvid.T_int32, 9, 8, 10))
	if err := Put(v, dvid.T_int32, []int{0, 0, 0}, []int{9, 8, 10}, sequence(720)); err != nil {
		t.Fatalf("native write: %v", err)
	}
	if err := v.SetApparentOrder("xspace", "yspace"); err != nil {
		t.Fatalf("apparent order: %v", err)
	}
	if err := v.SetDimFlip("zspace", volume.CounterFileOrder); err != nil {
		t.Fatalf("flip: %v", err)
	}

	expected := make([]int32, 720)
	var i int
	for z := 0; z < 9; z++ {
		for x := 0; x < 10; x++ {
			for y := 0; y < 8; y++ {
				expected[i] = int32((9-1-z)*80 + y*10 + x)
				i++
			}
		}
	}
	for _, budget := range []int{1 << 20, 64, 3} {
		got := make([]int32, 720)
		ctx := newContext(t, v, WithType(dvid.T_int32), WithMaxBufferSize(budget))
		if err := ctx.Get([]int{0, 0, 0}, []int{9, 10, 8}, got); err != nil {
			t.Fatalf("apparent read: %v", err)
		}
		for i := range expected {
			if got[i] != expected[i] {
				t.Fatalf("budget %d: element %d expected %d, got %d", budget, i, expected[i], got[i])
			}
		}
	}

	// A sub-hyperslab in apparent coordinates.
	sub := make([]int32, 2*3*4)
	if err := Get(v, dvid.T_int32, []int{1, 2, 3}, []int{2, 3, 4}, sub); err != nil {
		t.Fatalf("apparent sub read: %v", err)
	}
	i = 0
	for z := 1; z < 3; z++ {
		for x := 2; x < 5; x++ {
			for y := 3; y < 7; y++ {
				if want := int32((8-z)*80 + y*10 + x); sub[i] != want {
					t.Fatalf("apparent (%d,%d,%d): expected %d, got %d", z, x, y, want, sub[i])
				}
				i++
			}
		}
	}
}

func TestApparentWrite(t *testing.T) {
	db := newTestDB(t)
	v := createVolume(t, db, "apparent-write", testSpec(dvid.T_int32, 9, 8, 10))
	if err := v.SetApparentOrder("xspace", "yspace"); err != nil {
		t.Fatalf("apparent order: %v", err)
	}
	if err := v.SetDimFlip("zspace", volume.CounterFileOrder); err != nil {
		t.Fatalf("flip: %v", err)
	}
	buf := sequence(720)
	if err := Put(v, dvid.T_int32, []int{0, 0, 0}, []int{9, 10, 8}, buf); err != nil {
		t.Fatalf("apparent write: %v", err)
	}
	for i := range buf {
		if buf[i] != int32(i) {
			t.Fatalf("caller buffer changed at %d: %d", i, buf[i])
		}
	}

	native := make([]int32, 720)
	if err := v.ReadNative([]int{0, 0, 0}, []int{9, 8, 10}, native); err != nil {
		t.Fatalf("native read: %v", err)
	}
	var i int
	for z := 0; z < 9; z++ {
		for y := 0; y < 8; y++ {
			for x := 0; x < 10; x++ {
				if want := int32((8-z)*80 + x*8 + y); native[i] != want {
					t.Fatalf("native (%d,%d,%d): expected %d, got %d", z, y, x, want, native[i])
				}
				i++
			}
		}
	}
}

func TestRealScenario(t *testing.T) {
	db := newTestDB(t)
	v := createVolume(t, db, "scenario-b", testSpec(dvid.T_uint16, 2, 3))
	if err := v.SetRealRange(-1, 1); err != nil {
		t.Fatalf("real range: %v", err)
	}
	if err := Put(v, dvid.T_uint16, []int{0, 0}, []int{1, 1}, []uint16{32768}); err != nil {
		t.Fatalf("raw write: %v", err)
	}
	reals := make([]float64, 1)
	if err := GetReal(v, dvid.T_float64, []int{0, 0}, []int{1, 1}, reals); err != nil {
		t.Fatalf("real read: %v", err)
	}
	if math.Abs(reals[0]-1.0/65535) > 1e-12 {
		t.Errorf("expected real value %g, got %g", 1.0/65535, reals[0])
	}
	if err := PutReal(v, dvid.T_float64, []int{1, 2}, []int{1, 1}, reals); err != nil {
		t.Fatalf("real write: %v", err)
	}
	raw := make([]uint16, 1)
	if err := Get(v, dvid.T_uint16, []int{1, 2}, []int{1, 1}, raw); err != nil {
		t.Fatalf("raw read: %v", err)
	}
	if raw[0] < 32767 || raw[0] > 32769 {
		t.Errorf("expected 32768 +/- 1, got %d", raw[0])
	}
	if lo, hi := v.RealRange(); lo != -1 || hi != 1 {
		t.Errorf("real range should be unchanged, got [%g,%g]", lo, hi)
	}
}

func TestScalingRoundTrip(t *testing.T) {
	kinds := []dvid.DataType{dvid.T_uint8, dvid.T_int8, dvid.T_uint16, dvid.T_int16, dvid.T_uint32, dvid.T_int32}
	db := newTestDB(t)
	for _, kind := range kinds {
		v := createVolume(t, db, "roundtrip-"+kind.String(), testSpec(kind, 64))
		if err := v.SetRealRange(-3, 7.5); err != nil {
			t.Fatalf("real range: %v", err)
		}
		lo, hi := kind.Range()
		voxels := make([]float64, 64)
		for i := range voxels {
			voxels[i] = math.Round(lo + (hi-lo)*float64(i)/63)
		}
		if err := Put(v, dvid.T_float64, []int{0}, []int{64}, voxels); err != nil {
			t.Fatalf("%s raw write: %v", kind, err)
		}
		reals := make([]float64, 64)
		if err := GetReal(v, dvid.T_float64, []int{0}, []int{64}, reals); err != nil {
			t.Fatalf("%s real read: %v", kind, err)
		}
		ctx := newContext(t, v, WithType(dvid.T_float64), WithRangeScaling(true), WithRangeTracking(false))
		if err := ctx.Put([]int{0}, []int{64}, reals); err != nil {
			t.Fatalf("%s real write: %v", kind, err)
		}
		got := make([]float64, 64)
		if err := Get(v, dvid.T_float64, []int{0}, []int{64}, got); err != nil {
			t.Fatalf("%s raw read: %v", kind, err)
		}
		for i := range voxels {
			if math.Abs(got[i]-voxels[i]) > 1 {
				t.Errorf("%s: voxel %g came back as %g via real value %g", kind, voxels[i], got[i], reals[i])
			}
		}
	}
}

func TestWriteSaturation(t *testing.T) {
	db := newTestDB(t)
	tests := []struct {
		kind     dvid.DataType
		reals    []float64
		expected []float64
	}{
		{dvid.T_uint8, []float64{-0.5, 0, 0.5, 1, 1.5}, []float64{0, 0, 128, 255, 255}},
		{dvid.T_int16, []float64{-2, -1, 1, 2, 1e9}, []float64{-32768, -32768, 32767, 32767, 32767}},
		{dvid.T_uint32, []float64{-1, 2}, []float64{0, math.MaxUint32}},
	}
	for _, tc := range tests {
		n := len(tc.reals)
		v := createVolume(t, db, "saturate-"+tc.kind.String(), testSpec(tc.kind, n))
		if tc.kind.IsSigned() {
			if err := v.SetRealRange(-1, 1); err != nil {
				t.Fatalf("real range: %v", err)
			}
		}
		ctx := newContext(t, v, WithType(dvid.T_float64), WithRangeScaling(true), WithRangeTracking(false))
		if err := ctx.Put([]int{0}, []int{n}, tc.reals); err != nil {
			t.Fatalf("%s real write: %v", tc.kind, err)
		}
		got := make([]float64, n)
		if err := Get(v, dvid.T_float64, []int{0}, []int{n}, got); err != nil {
			t.Fatalf("%s raw read: %v", tc.kind, err)
		}
		for i := range got {
			if got[i] != tc.expected[i] {
				t.Errorf("%s: real %g expected voxel %g, got %g", tc.kind, tc.reals[i], tc.expected[i], got[i])
			}
		}
	}
}

func TestRangeTracking(t *testing.T) {
	db := newTestDB(t)
	v := createVolume(t, db, "tracked", testSpec(dvid.T_uint8, 4))
	if err := PutReal(v, dvid.T_float64, []int{0}, []int{4}, []float64{-2, 0, 3, 6}); err != nil {
		t.Fatalf("real write: %v", err)
	}
	if lo, hi := v.RealRange(); lo != -2 || hi != 6 {
		t.Errorf("expected real range [-2,6], got [%g,%g]", lo, hi)
	}
	if err := PutReal(v, dvid.T_float64, []int{0}, []int{1}, []float64{1}); err != nil {
		t.Fatalf("real write: %v", err)
	}
	if lo, hi := v.RealRange(); lo != -2 || hi != 6 {
		t.Errorf("whole-volume range should only extend, got [%g,%g]", lo, hi)
	}
	raw := make([]uint8, 4)
	if err := Get(v, dvid.T_uint8, []int{0}, []int{4}, raw); err != nil {
		t.Fatalf("raw read: %v", err)
	}
	if raw[1] != 64 || raw[3] != 255 {
		t.Errorf("expected voxels mapped over [-2,6], got %v", raw)
	}
}

func fillRandom(rng *rand.Rand, buf []float64, lo, hi float64) {
	for i := range buf {
		buf[i] = lo + rng.Float64()*(hi-lo)
	}
}

func TestChunkingTransparency(t *testing.T) {
	for _, sliced := range []bool{false, true} {
		db := newTestDB(t)
		var vols [2]*volume.Volume
		for i, budget := range []int{1 << 20, 7} {
			spec := testSpec(dvid.T_int16, 4, 5, 6)
			spec.SliceScaling = sliced
			v := createVolume(t, db, fmt.Sprintf("chunks-%d", i), spec)
			if err := v.SetApparentOrder("xspace", "zspace"); err != nil {
				t.Fatalf("apparent order: %v", err)
			}
			if err := v.SetDimFlip("yspace", volume.CounterFileOrder); err != nil {
				t.Fatalf("flip: %v", err)
			}

			rng := rand.New(rand.NewSource(42))
			full := make([]float64, 120)
			fillRandom(rng, full, -50, 50)
			part := make([]float64, 36)
			fillRandom(rng, part, -80, 20)
			saved := append([]float64(nil), part...)

			ctx := newContext(t, v, WithType(dvid.T_float64), WithRangeScaling(true), WithMaxBufferSize(budget))
			if err := ctx.Put([]int{0, 0, 0}, []int{5, 6, 4}, full); err != nil {
				t.Fatalf("full write with budget %d: %v", budget, err)
			}
			if err := ctx.Put([]int{1, 0, 1}, []int{3, 6, 2}, part); err != nil {
				t.Fatalf("partial write with budget %d: %v", budget, err)
			}
			for j := range part {
				if part[j] != saved[j] {
					t.Fatalf("caller buffer changed by write with budget %d", budget)
				}
			}
			vols[i] = v
		}

		raw := [2][]int16{make([]int16, 120), make([]int16, 120)}
		for i, v := range vols {
			if err := v.ReadNative([]int{0, 0, 0}, []int{4, 5, 6}, raw[i]); err != nil {
				t.Fatalf("native read: %v", err)
			}
		}
		for j := range raw[0] {
			if raw[0][j] != raw[1][j] {
				t.Fatalf("slice scaling %t: stored voxel %d differs between budgets: %d vs %d", sliced, j, raw[0][j], raw[1][j])
			}
		}

		var reads [2][]float64
		for i, budget := range []int{1 << 20, 5} {
			reads[i] = make([]float64, 2*4*3)
			ctx := newContext(t, vols[0], WithType(dvid.T_float64), WithRangeScaling(true), WithMaxBufferSize(budget))
			if err := ctx.Get([]int{2, 1, 0}, []int{2, 4, 3}, reads[i]); err != nil {
				t.Fatalf("read with budget %d: %v", budget, err)
			}
		}
		for j := range reads[0] {
			if math.Float64bits(reads[0][j]) != math.Float64bits(reads[1][j]) {
				t.Fatalf("slice scaling %t: read element %d differs between budgets", sliced, j)
			}
		}
	}
}

func TestSliceIndependence(t *testing.T) {
	db := newTestDB(t)
	spec := testSpec(dvid.T_uint8, 3, 4, 5)
	spec.SliceScaling = true
	v := createVolume(t, db, "slices", spec)

	data := make([]float64, 60)
	var i int
	for z := 0; z < 3; z++ {
		for y := 0; y < 4; y++ {
			for x := 0; x < 5; x++ {
				data[i] = float64(z*100 + y*5 + x)
				i++
			}
		}
	}
	if err := PutReal(v, dvid.T_float64, []int{0, 0, 0}, []int{3, 4, 5}, data); err != nil {
		t.Fatalf("real write: %v", err)
	}
	for z := 0; z < 3; z++ {
		lo, hi, err := v.SliceRange([]int{z})
		if err != nil {
			t.Fatalf("slice range: %v", err)
		}
		if lo != float64(z*100) || hi != float64(z*100+19) {
			t.Errorf("slice %d: expected range [%d,%d], got [%g,%g]", z, z*100, z*100+19, lo, hi)
		}
	}

	before := make([]float64, 60)
	if err := GetReal(v, dvid.T_float64, []int{0, 0, 0}, []int{3, 4, 5}, before); err != nil {
		t.Fatalf("real read: %v", err)
	}
	tolerance := 19.0/255/2 + 1e-9
	for i := range data {
		if math.Abs(before[i]-data[i]) > tolerance {
			t.Errorf("element %d: wrote %g, read %g", i, data[i], before[i])
		}
	}

	if err := v.SetSliceRange([]int{1}, 0, 1); err != nil {
		t.Fatalf("set slice range: %v", err)
	}
	after := make([]float64, 60)
	if err := GetReal(v, dvid.T_float64, []int{0, 0, 0}, []int{3, 4, 5}, after); err != nil {
		t.Fatalf("real read: %v", err)
	}
	for i := range after {
		inSlice1 := i >= 20 && i < 40
		if !inSlice1 && after[i] != before[i] {
			t.Errorf("element %d outside the changed slice went from %g to %g", i, before[i], after[i])
		}
		if inSlice1 && after[i] > 1 {
			t.Errorf("element %d of the changed slice should be in [0,1], got %g", i, after[i])
		}
	}
}

func TestDegenerateRange(t *testing.T) {
	db := newTestDB(t)
	v := createVolume(t, db, "flat", testSpec(dvid.T_int16, 3))
	if err := v.SetValidRange(5, 5); err != nil {
		t.Fatalf("valid range: %v", err)
	}
	if err := v.SetRealRange(2, 9); err != nil {
		t.Fatalf("real range: %v", err)
	}
	if err := Put(v, dvid.T_int16, []int{0}, []int{3}, []int16{5, 100, -7}); err != nil {
		t.Fatalf("raw write: %v", err)
	}
	got := make([]float64, 3)
	if err := GetReal(v, dvid.T_float64, []int{0}, []int{3}, got); err != nil {
		t.Fatalf("real read: %v", err)
	}
	for i := range got {
		if got[i] != 2 {
			t.Errorf("element %d: expected constant 2, got %g", i, got[i])
		}
	}

	ctx := newContext(t, v, WithType(dvid.T_float64), WithRangeScaling(true), WithFillValue(true, -1))
	if err := ctx.Get([]int{0}, []int{3}, got); err != nil {
		t.Fatalf("real read with fill: %v", err)
	}
	if got[0] != 2 || got[1] != -1 || got[2] != -1 {
		t.Errorf("expected [2 -1 -1], got %v", got)
	}
}

func TestFillValue(t *testing.T) {
	db := newTestDB(t)
	v := createVolume(t, db, "fill-float", testSpec(dvid.T_float64, 4))
	if err := v.SetValidRange(0, 1); err != nil {
		t.Fatalf("valid range: %v", err)
	}
	eps := FillValueEpsilon
	stored := []float64{0.5, 1 + 2*eps, 1 + eps/2, -2 * eps}
	if err := Put(v, dvid.T_float64, []int{0}, []int{4}, stored); err != nil {
		t.Fatalf("raw write: %v", err)
	}
	got := make([]float64, 4)
	ctx := newContext(t, v, WithType(dvid.T_float64), WithRangeScaling(true), WithFillValue(true, -999))
	if err := ctx.Get([]int{0}, []int{4}, got); err != nil {
		t.Fatalf("read with fill: %v", err)
	}
	expected := []float64{0.5, -999, 1 + eps/2, -999}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("element %d: expected %g, got %g", i, expected[i], got[i])
		}
	}

	v8 := createVolume(t, db, "fill-uint8", testSpec(dvid.T_uint8, 4))
	if err := v8.SetValidRange(10, 200); err != nil {
		t.Fatalf("valid range: %v", err)
	}
	if err := Put(v8, dvid.T_uint8, []int{0}, []int{4}, []uint8{10, 200, 201, 9}); err != nil {
		t.Fatalf("raw write: %v", err)
	}
	ctx = newContext(t, v8, WithType(dvid.T_float32), WithRangeScaling(true), WithFillValue(true, -1))
	reals := make([]float32, 4)
	if err := ctx.Get([]int{0}, []int{4}, reals); err != nil {
		t.Fatalf("read with fill: %v", err)
	}
	if reals[0] != 0 || reals[1] != 1 || reals[2] != -1 || reals[3] != -1 {
		t.Errorf("expected [0 1 -1 -1], got %v", reals)
	}
}

func TestFloatFillKeepsWrittenReals(t *testing.T) {
	db := newTestDB(t)
	v := createVolume(t, db, "float-reals", testSpec(dvid.T_float32, 6))
	if lo, hi := v.ValidRange(); lo != -math.MaxFloat32 || hi != math.MaxFloat32 {
		t.Errorf("expected float32 valid range by default, got [%g,%g]", lo, hi)
	}
	written := []float32{0.5, 5, -3, 100, 0.25, 1}
	if err := PutReal(v, dvid.T_float32, []int{0}, []int{6}, written); err != nil {
		t.Fatalf("real write: %v", err)
	}
	if lo, hi := v.RealRange(); lo != -3 || hi != 100 {
		t.Errorf("expected real range [-3,100], got [%g,%g]", lo, hi)
	}
	got := make([]float32, 6)
	ctx := newContext(t, v, WithType(dvid.T_float32), WithRangeScaling(true), WithFillValue(true, -1))
	if err := ctx.Get([]int{0}, []int{6}, got); err != nil {
		t.Fatalf("real read with fill: %v", err)
	}
	for i := range written {
		if got[i] != written[i] {
			t.Errorf("element %d: expected %g, got %g", i, written[i], got[i])
		}
	}
}

func TestNormalization(t *testing.T) {
	db := newTestDB(t)
	v := createVolume(t, db, "normal", testSpec(dvid.T_uint8, 3))
	if err := v.SetRealRange(0, 10); err != nil {
		t.Fatalf("real range: %v", err)
	}
	if err := Put(v, dvid.T_uint8, []int{0}, []int{3}, []uint8{0, 51, 255}); err != nil {
		t.Fatalf("raw write: %v", err)
	}

	tests := []struct {
		min, max float64
		expected []uint8
	}{
		{0, 10, []uint8{0, 51, 255}},
		{0, 5, []uint8{0, 102, 255}},
	}
	for _, tc := range tests {
		got := make([]uint8, 3)
		if err := GetNormalized(v, dvid.T_uint8, tc.min, tc.max, []int{0}, []int{3}, got); err != nil {
			t.Fatalf("normalized read: %v", err)
		}
		for i := range got {
			if got[i] != tc.expected[i] {
				t.Errorf("[%g,%g]: expected %v, got %v", tc.min, tc.max, tc.expected, got)
				break
			}
		}
	}

	i16 := make([]int16, 3)
	ctx := newContext(t, v, WithType(dvid.T_int16), WithNormalization(true))
	if err := ctx.Get([]int{0}, []int{3}, i16); err != nil {
		t.Fatalf("normalized read: %v", err)
	}
	if i16[0] != -32768 || i16[1] != -19661 || i16[2] != 32767 {
		t.Errorf("expected [-32768 -19661 32767], got %v", i16)
	}

	if err := GetNormalized(v, dvid.T_float32, 0, 1, []int{0}, []int{3}, make([]float32, 3)); !errors.Is(err, ErrNormalizeFloat) {
		t.Errorf("expected ErrNormalizeFloat, got %v", err)
	}

	if err := PutNormalized(v, dvid.T_uint8, 0, 10, []int{2}, []int{1}, []uint8{128}); err != nil {
		t.Fatalf("normalized write: %v", err)
	}
	raw := make([]uint8, 1)
	if err := Get(v, dvid.T_uint8, []int{2}, []int{1}, raw); err != nil {
		t.Fatalf("raw read: %v", err)
	}
	if raw[0] != 128 {
		t.Errorf("expected voxel 128, got %d", raw[0])
	}
}

func TestScalarVolume(t *testing.T) {
	db := newTestDB(t)
	v := createVolume(t, db, "scalar", volume.Spec{DataType: dvid.T_float32})
	if err := Put(v, dvid.T_float64, nil, nil, []float64{2.5}); err != nil {
		t.Fatalf("scalar write: %v", err)
	}
	got := make([]float64, 1)
	if err := GetReal(v, dvid.T_float64, []int{}, []int{}, got); err != nil {
		t.Fatalf("scalar read: %v", err)
	}
	if got[0] != 2.5 {
		t.Errorf("expected 2.5, got %g", got[0])
	}
}

func TestContractErrors(t *testing.T) {
	db := newTestDB(t)
	v := createVolume(t, db, "contract", testSpec(dvid.T_uint8, 4, 4))
	data := make([]uint8, 16)
	for i := range data {
		data[i] = 8
	}
	if err := Put(v, dvid.T_uint8, []int{0, 0}, []int{4, 4}, data); err != nil {
		t.Fatalf("write: %v", err)
	}

	buf := make([]uint8, 16)
	if err := Get(v, dvid.T_uint8, []int{1, 0}, []int{4, 4}, buf); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
	if err := Get(v, dvid.T_uint8, []int{0, 0}, []int{4}, buf); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds for wrong rank, got %v", err)
	}
	if err := Get(v, dvid.T_int16, []int{0, 0}, []int{4, 4}, buf); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
	if err := Get(v, dvid.T_uint8, []int{0, 0}, []int{4, 4}, buf[:15]); !errors.Is(err, ErrBufferSize) {
		t.Errorf("expected ErrBufferSize, got %v", err)
	}

	if err := v.BuildResolution(1); err != nil {
		t.Fatalf("build resolution: %v", err)
	}
	if err := v.SelectResolution(1); err != nil {
		t.Fatalf("select resolution: %v", err)
	}
	small := make([]uint8, 4)
	if err := Get(v, dvid.T_uint8, []int{0, 0}, []int{2, 2}, small); err != nil {
		t.Fatalf("level 1 read: %v", err)
	}
	for _, x := range small {
		if x != 8 {
			t.Errorf("expected level 1 voxels of 8, got %v", small)
			break
		}
	}
	if err := Put(v, dvid.T_uint8, []int{0, 0}, []int{2, 2}, small); !errors.Is(err, ErrReadOnlyResolution) {
		t.Errorf("expected ErrReadOnlyResolution, got %v", err)
	}
}

func TestContextStates(t *testing.T) {
	db := newTestDB(t)
	v := createVolume(t, db, "states", testSpec(dvid.T_uint8, 2))
	ctx, err := NewContext(WithType(dvid.T_uint8))
	if err != nil {
		t.Fatalf("new context: %v", err)
	}
	buf := make([]uint8, 2)
	if err := ctx.Get([]int{0}, []int{2}, buf); !errors.Is(err, ErrNotAttached) {
		t.Errorf("expected ErrNotAttached, got %v", err)
	}
	if err := ctx.Detach(); !errors.Is(err, ErrNotAttached) {
		t.Errorf("expected ErrNotAttached on detach, got %v", err)
	}
	if err := ctx.Attach(v); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := ctx.Attach(v); !errors.Is(err, ErrAlreadyAttached) {
		t.Errorf("expected ErrAlreadyAttached, got %v", err)
	}
	if err := ctx.Set(WithRangeScaling(true)); !errors.Is(err, ErrConfigLocked) {
		t.Errorf("expected ErrConfigLocked, got %v", err)
	}
	if err := ctx.Get([]int{0}, []int{2}, buf); err != nil {
		t.Errorf("attached read: %v", err)
	}
	if err := ctx.Detach(); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if err := ctx.Set(WithRangeScaling(true)); err != nil {
		t.Errorf("set after detach: %v", err)
	}
	if err := ctx.Set(WithMaxBufferSize(0)); err == nil {
		t.Errorf("expected error for empty buffer budget")
	}
	if err := ctx.Destroy(); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if err := ctx.Destroy(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("expected ErrDestroyed, got %v", err)
	}
	if err := ctx.Attach(v); !errors.Is(err, ErrDestroyed) {
		t.Errorf("expected ErrDestroyed on attach, got %v", err)
	}
}

var errInjected = errors.New("injected storage failure")

// failingDB fails every Put once limit puts have succeeded.
type failingDB struct {
	storage.OrderedKeyValueDB
	puts  int
	limit int
}

func (db *failingDB) Put(k storage.Key, v []byte) error {
	if db.limit >= 0 && db.puts >= db.limit {
		return errInjected
	}
	db.puts++
	return db.OrderedKeyValueDB.Put(k, v)
}

func TestPartialWriteFailure(t *testing.T) {
	db := &failingDB{OrderedKeyValueDB: newTestDB(t), limit: -1}
	spec := testSpec(dvid.T_uint8, 4, 8)
	spec.BlockSize = []int{1, 8}
	v := createVolume(t, db, "failing", spec)

	// One row per chunk.  The first chunk also stores metadata.
	db.puts, db.limit = 0, 3
	data := make([]uint8, 32)
	for i := range data {
		data[i] = uint8(i + 1)
	}
	ctx := newContext(t, v, WithType(dvid.T_uint8), WithMaxBufferSize(8))
	err := ctx.Put([]int{0, 0}, []int{4, 8}, data)
	var terr *TransferError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransferError, got %v", err)
	}
	if terr.Chunk != 2 || terr.Completed != 2 || !errors.Is(err, errInjected) {
		t.Errorf("unexpected transfer error %+v", terr)
	}

	got := make([]uint8, 32)
	if err := ctx.Get([]int{0, 0}, []int{4, 8}, got); err != nil {
		t.Fatalf("read after failure: %v", err)
	}
	for i := range got {
		want := data[i]
		if i >= 16 {
			want = 0
		}
		if got[i] != want {
			t.Fatalf("element %d: expected %d, got %d", i, want, got[i])
		}
	}
}

func TestConcurrentContexts(t *testing.T) {
	db := newTestDB(t)
	v := createVolume(t, db, "shared", testSpec(dvid.T_int32, 8, 16))
	if err := Put(v, dvid.T_int32, []int{0, 0}, []int{8, 16}, sequence(128)); err != nil {
		t.Fatalf("write: %v", err)
	}

	var g errgroup.Group
	for row := 0; row < 8; row++ {
		g.Go(func() error {
			ctx, err := NewContext(WithType(dvid.T_float64), WithMaxBufferSize(16))
			if err != nil {
				return err
			}
			defer ctx.Destroy()
			if err := ctx.Attach(v); err != nil {
				return err
			}
			buf := make([]float64, 16)
			for iter := 0; iter < 10; iter++ {
				if err := ctx.Get([]int{row, 0}, []int{1, 16}, buf); err != nil {
					return err
				}
				for x, val := range buf {
					if val != float64(row*16+x) {
						return fmt.Errorf("row %d, x %d: got %g", row, x, val)
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

func TestResize(t *testing.T) {
	db := newTestDB(t)
	v := createVolume(t, db, "resize", testSpec(dvid.T_uint8, 4, 6))
	data := make([]uint8, 24)
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			data[y*6+x] = uint8(y*10 + x*2)
		}
	}
	if err := Put(v, dvid.T_uint8, []int{0, 0}, []int{4, 6}, data); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx := newContext(t, v, WithDimConversion(true), WithAxisSize(AxisA, 3), WithAxisSize(AxisB, 8))
	got := make([]uint8, 24)
	if err := ctx.Get([]int{0, 0}, []int{8, 3}, got); err != nil {
		t.Fatalf("resized read: %v", err)
	}
	for yb := 0; yb < 8; yb++ {
		for j := 0; j < 3; j++ {
			if want := uint8((yb/2)*10 + 4*j + 1); got[yb*3+j] != want {
				t.Errorf("resized (%d,%d): expected %d, got %d", yb, j, want, got[yb*3+j])
			}
		}
	}

	part := make([]uint8, 4)
	if err := ctx.Get([]int{3, 1}, []int{2, 2}, part); err != nil {
		t.Fatalf("resized partial read: %v", err)
	}
	if part[0] != 15 || part[1] != 19 || part[2] != 25 || part[3] != 29 {
		t.Errorf("expected [15 19 25 29], got %v", part)
	}
	if err := ctx.Get([]int{0, 0}, []int{8, 4}, make([]uint8, 32)); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds past resized length, got %v", err)
	}
	if err := ctx.Put([]int{0, 0}, []int{8, 3}, got); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported for resized write, got %v", err)
	}

	bad, err := NewContext(WithDimConversion(true), WithAxisSize(AxisA, 4))
	if err != nil {
		t.Fatalf("new context: %v", err)
	}
	if err := bad.Attach(v); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported for non-integer factor, got %v", err)
	}
}

func TestAxisDirection(t *testing.T) {
	db := newTestDB(t)
	v := createVolume(t, db, "direction", testSpec(dvid.T_uint8, 4))
	if err := Put(v, dvid.T_uint8, []int{0}, []int{4}, []uint8{1, 2, 3, 4}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := make([]uint8, 4)
	ctx := newContext(t, v, WithDimConversion(true), WithAxisDirection(volume.ClassX, -1))
	if err := ctx.Get([]int{0}, []int{4}, got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got[0] != 4 || got[3] != 1 {
		t.Errorf("expected reversed axis, got %v", got)
	}
	if _, err := NewContext(WithAxisDirection(volume.ClassTime, 1)); err == nil {
		t.Errorf("expected error forcing direction of a time axis")
	}
}
