package tracer

import (
	"github.com/Faultbox/reflectsim/internal/scene"
	"github.com/Faultbox/reflectsim/pkg/math"
)

// Defaults.
const (
	DefaultMaxReflections = 5
	DefaultOffset         = 1e-4
	escapeLength          = 1000
)

// Outcome is why a ray stopped.
type Outcome int

// Ray outcomes.
const (
	Detected Outcome = iota
	Escaped
	Exhausted
	Absorbed
)

func (o Outcome) String() string {
	switch o {
	case Detected:
		return "detected"
	case Escaped:
		return "escaped"
	case Exhausted:
		return "exhausted"
	case Absorbed:
		return "absorbed"
	default:
		return "unknown"
	}
}

// Segment is one straight leg of a ray path.
type Segment struct {
	Start math.Vec3
	End   math.Vec3
}

// Result is the outcome of tracing one ray.
type Result struct {
	Outcome     Outcome
	Point       math.Vec3
	Reflections int
	Path        []Segment
}

// Hit reports whether the ray reached the detector.
func (r Result) Hit() bool {
	return r.Outcome == Detected
}

// Options tunes a Tracer.
type Options struct {
	MaxReflections int
	// Offset moves a reflected ray off the surface it just left.
	Offset float64
	// CheckAfterBounce tests the detector rectangle after every reflection.
	CheckAfterBounce bool
	// CheckOnEscape tests the detector when the ray leaves the scene.
	CheckOnEscape bool
	// RecordPath keeps every leg of the ray in Result.Path.
	RecordPath bool
}

// Tracer follows rays through a scene toward a detector. It keeps no
// per-ray state and is safe for concurrent use.
type Tracer struct {
	Scene    scene.Query
	Detector Detector
	Options  Options
}

// New returns a tracer with defaulted options.
func New(q scene.Query, det Detector, opts Options) *Tracer {
	if opts.MaxReflections < 0 {
		opts.MaxReflections = DefaultMaxReflections
	}
	if opts.Offset <= 0 {
		opts.Offset = DefaultOffset
	}
	return &Tracer{Scene: q, Detector: det, Options: opts}
}

// Trace follows one ray. A scene hit reflects the direction about the hit
// normal and restarts just past the hit point; a ray may reflect up to
// MaxReflections times and the next scene hit ends it as Exhausted. After a
// reflection the detector counts only if no scene geometry lies in front of
// it. A ray that leaves the scene is Detected only when CheckOnEscape is set
// and its line crosses the detector ahead of it. A zero hit normal ends the
// ray as Absorbed.
func (t *Tracer) Trace(origin, dir math.Vec3) Result {
	res := Result{}
	pos := origin
	dir = dir.Normalize()
	if dir.IsZero() {
		res.Outcome = Absorbed
		return res
	}

	for {
		hit, ok := t.Scene.Cast(pos, dir)

		if t.Options.CheckAfterBounce && res.Reflections > 0 {
			if p, found := t.Detector.Intersect(pos, dir); found && (!ok || pos.Distance(p) <= hit.Distance) {
				return t.detected(res, pos, p)
			}
		}

		if !ok {
			if t.Options.CheckOnEscape {
				if p, found := t.Detector.EscapeIntersect(pos, dir); found {
					return t.detected(res, pos, p)
				}
			}
			t.record(&res, pos, pos.Add(dir.Scale(escapeLength)))
			res.Outcome = Escaped
			return res
		}

		t.record(&res, pos, hit.Point)
		res.Point = hit.Point
		if res.Reflections >= t.Options.MaxReflections {
			res.Outcome = Exhausted
			return res
		}

		normal := hit.Normal.Normalize()
		if normal.IsZero() {
			res.Outcome = Absorbed
			return res
		}

		dir = math.Reflect(dir, normal).Normalize()
		pos = hit.Point.Add(dir.Scale(t.Options.Offset))
		res.Reflections++
	}
}

func (t *Tracer) detected(res Result, from, at math.Vec3) Result {
	t.record(&res, from, at)
	res.Outcome = Detected
	res.Point = at
	return res
}

func (t *Tracer) record(res *Result, from, to math.Vec3) {
	if t.Options.RecordPath {
		res.Path = append(res.Path, Segment{Start: from, End: to})
	}
}
