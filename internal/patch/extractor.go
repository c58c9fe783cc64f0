package patch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"math/rand/v2"
	"sync"

	"github.com/ironsheep/image-patches-mcp/internal/imaging"
)

// Converter turns a cropped patch buffer into a payload. The buffer is
// owned by the converter and stays valid after extraction finishes.
type Converter[P any] interface {
	Convert(buf *imaging.PixelBuffer) (P, error)
}

// ConverterFunc adapts a plain function to Converter.
type ConverterFunc[P any] func(buf *imaging.PixelBuffer) (P, error)

// Convert calls f(buf).
func (f ConverterFunc[P]) Convert(buf *imaging.PixelBuffer) (P, error) {
	return f(buf)
}

// Result is the output of one extraction. Patches[i] was cut from Rects[i];
// both are in origin order with skipped patches left out.
type Result[P any] struct {
	Patches []P
	Rects   []image.Rectangle

	// Region is the effective sampling region.
	Region image.Rectangle

	// Grid is the grid used for uniform placement; zero otherwise.
	Grid Grid

	// Failures lists the patches that were skipped, in origin order.
	Failures []*PatchError
}

// Option configures an Extractor.
type Option func(*options)

type options struct {
	format  imaging.PixelFormat
	workers int
	seeded  bool
	seed    uint64
	logger  *log.Logger
}

// WithFormat sets the pixel format patch buffers are produced in. The
// default is imaging.FormatNRGBA.
func WithFormat(f imaging.PixelFormat) Option {
	return func(o *options) { o.format = f }
}

// WithWorkers crops and converts patches on n goroutines. Values below 2
// keep extraction sequential.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithSeed makes random sampling reproducible: every call draws from a
// generator seeded with seed.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seeded = true
		o.seed = seed
	}
}

// WithLogger sets the logger skipped patches are reported to. The default
// is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Extractor cuts patches out of images and converts them to payloads of
// type P. An Extractor holds no per-call state and may be used from
// multiple goroutines.
type Extractor[P any] struct {
	convert Converter[P]
	opts    options
}

// New returns an Extractor that converts every patch with convert.
func New[P any](convert Converter[P], opts ...Option) *Extractor[P] {
	o := options{format: imaging.FormatNRGBA, workers: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	return &Extractor[P]{convert: convert, opts: o}
}

// ExtractGrid extracts a g.Columns x g.Rows grid of patches spread
// uniformly over mask. The zero mask selects the whole image.
func (e *Extractor[P]) ExtractGrid(ctx context.Context, src imaging.Source, size image.Point, g Grid, mask image.Rectangle) (*Result[P], error) {
	bounds, err := sourceBounds(src)
	if err != nil {
		return nil, err
	}
	plan, err := PlanGrid(bounds, size, g, mask)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, src, plan)
}

// ExtractSampled extracts about count patches from mask using method. The
// zero mask selects the whole image.
func (e *Extractor[P]) ExtractSampled(ctx context.Context, src imaging.Source, size image.Point, count int, method Method, mask image.Rectangle) (*Result[P], error) {
	bounds, err := sourceBounds(src)
	if err != nil {
		return nil, err
	}
	plan, err := PlanSampled(e.rng(), bounds, size, count, method, mask)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, src, plan)
}

// ExtractShrunk extracts about count patches from the centered region that
// remains after shrinking the image by factor. Result.Region reports that
// region.
func (e *Extractor[P]) ExtractShrunk(ctx context.Context, src imaging.Source, size image.Point, count int, method Method, factor float64) (*Result[P], error) {
	bounds, err := sourceBounds(src)
	if err != nil {
		return nil, err
	}
	plan, err := PlanShrunk(e.rng(), bounds, size, count, method, factor)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, src, plan)
}

// ExtractAt extracts one patch at each of the given origins, bypassing
// sampling. Origins whose patch leaves the image are skipped.
func (e *Extractor[P]) ExtractAt(ctx context.Context, src imaging.Source, size image.Point, origins []image.Point) (*Result[P], error) {
	bounds, err := sourceBounds(src)
	if err != nil {
		return nil, err
	}
	plan, err := PlanAt(bounds, size, origins)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, src, plan)
}

// Run extracts the patches of a precomputed plan.
//
// The source is normalized once. Each patch is cropped into its own buffer
// and converted; a patch that fails either step is logged, recorded in
// Result.Failures and left out of the output. Cancelling ctx stops
// extraction and returns ctx.Err().
func (e *Extractor[P]) Run(ctx context.Context, src imaging.Source, plan *Plan) (*Result[P], error) {
	if plan == nil {
		return nil, errors.New("nil patch plan")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	surf, err := imaging.NewSurface(src, e.opts.format)
	if err != nil {
		return nil, err
	}
	defer surf.Close()

	rects := plan.Rects()
	slots := make([]slot[P], len(rects))

	if e.opts.workers > 1 && len(rects) > 1 {
		err = e.extractParallel(ctx, surf, rects, slots)
	} else {
		err = e.extractSequential(ctx, surf, rects, slots)
	}
	if err != nil {
		return nil, err
	}

	res := &Result[P]{
		Patches: make([]P, 0, len(rects)),
		Rects:   make([]image.Rectangle, 0, len(rects)),
		Region:  plan.Region,
		Grid:    plan.Grid,
	}
	for i, s := range slots {
		if s.err != nil {
			pe := &PatchError{Index: i, Rect: rects[i], Err: s.err}
			e.opts.logger.Printf("Skipping %v", pe)
			res.Failures = append(res.Failures, pe)
			continue
		}
		res.Patches = append(res.Patches, s.payload)
		res.Rects = append(res.Rects, rects[i])
	}
	return res, nil
}

type slot[P any] struct {
	payload P
	err     error
}

func (e *Extractor[P]) extractSequential(ctx context.Context, surf *imaging.Surface, rects []image.Rectangle, slots []slot[P]) error {
	for i, r := range rects {
		if err := ctx.Err(); err != nil {
			return err
		}
		slots[i].payload, slots[i].err = e.extractOne(surf, r)
	}
	return nil
}

// extractParallel fans patch indices out to a fixed pool. Each worker
// writes only the slots of the indices it receives.
func (e *Extractor[P]) extractParallel(ctx context.Context, surf *imaging.Surface, rects []image.Rectangle, slots []slot[P]) error {
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(e.opts.workers, len(rects)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				slots[i].payload, slots[i].err = e.extractOne(surf, rects[i])
			}
		}()
	}

dispatch:
	for i := range rects {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return ctx.Err()
}

func (e *Extractor[P]) extractOne(surf *imaging.Surface, r image.Rectangle) (P, error) {
	buf, err := surf.Crop(r)
	if err != nil {
		var zero P
		return zero, err
	}
	return e.convert.Convert(buf)
}

func (e *Extractor[P]) rng() *rand.Rand {
	if !e.opts.seeded {
		return nil
	}
	return rand.New(rand.NewPCG(e.opts.seed, e.opts.seed))
}

// sourceBounds returns the image-space extent of src.
func sourceBounds(src imaging.Source) (image.Rectangle, error) {
	if src == nil {
		return image.Rectangle{}, ErrImageDecodeFailed
	}
	img := src.Image()
	if img == nil {
		return image.Rectangle{}, ErrImageDecodeFailed
	}
	b := img.Bounds()
	if b.Empty() {
		return image.Rectangle{}, fmt.Errorf("%w: empty bounds %v", ErrImageDecodeFailed, b)
	}
	return b, nil
}
