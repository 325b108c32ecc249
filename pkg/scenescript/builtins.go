package scenescript

import (
	"fmt"
	"strings"
	"sync/atomic"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/umbra/pkg/geom"
	"github.com/chazu/umbra/pkg/mesh"
	"github.com/chazu/umbra/pkg/meshgen"
	"github.com/chazu/umbra/pkg/scene"
	"github.com/chazu/umbra/pkg/shadow"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals,
//     which would conflict with user-defined variables of the same
//     name.
//
//  2. Kebab-case to underscore: casts-shadow -> casts_shadow
//     zygomys does not allow hyphens in identifiers (it interprets
//     them as the subtraction operator).
//
// Both transformations respect string literal boundaries and line
// comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a geom.Vec3.
type sexpVec3 struct {
	vec geom.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpMesh wraps a built caster mesh so it can be returned from `box`
// and friends and consumed by `instance`.
type sexpMesh struct {
	m    *mesh.Mesh
	desc string
}

func (m *sexpMesh) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(mesh %s, %d faces)", m.desc, len(m.m.Faces))
}
func (m *sexpMesh) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string. Returns the
// keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword
// argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a bool from a Sexp.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a geom.Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (geom.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geom.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toMesh extracts a caster mesh from a sexpMesh.
func toMesh(s zygo.Sexp) (*mesh.Mesh, error) {
	if m, ok := s.(*sexpMesh); ok {
		return m.m, nil
	}
	return nil, fmt.Errorf("expected mesh, got %T (%s)", s, s.SexpString(nil))
}

// instanceCounter provides unique suffixes for unnamed instances.
var instanceCounter uint64

func nextInstanceName() string {
	n := atomic.AddUint64(&instanceCounter, 1)
	return fmt.Sprintf("instance-%d", n)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene DSL builtins into a zygomys
// environment. The builtins populate the provided scene during
// evaluation.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens are converted to recognizable
// string literals.
func registerBuiltins(env *zygo.Zlisp, s *scene.Scene) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}
		return &sexpVec3{vec: geom.V(x, y, z)}, nil
	})

	// -----------------------------------------------------------------------
	// (light (vec3 1 0 -1))  — direction shadows travel
	// -----------------------------------------------------------------------
	env.AddFunction("light", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("light requires a direction vec3")
		}
		dir, err := toVec3(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("light: %w", err)
		}
		if dir.Norm() < geom.Tol {
			return zygo.SexpNull, fmt.Errorf("light: zero direction")
		}
		s.SetLight(dir)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (receiver :width 6 :depth 6 :at (vec3 0 0 0) :normal (vec3 0 0 1)
	//           :name "ground")
	// -----------------------------------------------------------------------
	env.AddFunction("receiver", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		var width, depth float64
		var err error
		if v, ok := pa.kw["width"]; ok {
			if width, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("receiver: width: %w", err)
			}
		}
		if v, ok := pa.kw["depth"]; ok {
			if depth, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("receiver: depth: %w", err)
			}
		}
		if width <= 0 || depth <= 0 {
			return zygo.SexpNull, fmt.Errorf("receiver: width and depth must be positive, got %g x %g", width, depth)
		}

		at := geom.V(0, 0, 0)
		if v, ok := pa.kw["at"]; ok {
			if at, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("receiver: at: %w", err)
			}
		}
		normal := geom.V(0, 0, 1)
		if v, ok := pa.kw["normal"]; ok {
			if normal, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("receiver: normal: %w", err)
			}
			if normal.Norm() < geom.Tol {
				return zygo.SexpNull, fmt.Errorf("receiver: zero normal")
			}
		}
		faceName := "receiver"
		if v, ok := pa.kw["name"]; ok {
			if faceName, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("receiver: name: %w", err)
			}
		}

		s.AddReceivingFace(faceName, geom.NewPlane(at, normal), shadow.RectLoop(0, 0, width, depth))
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (box :size (vec3 1 1 2))
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		size := geom.V(1, 1, 1)
		if v, ok := pa.kw["size"]; ok {
			var err error
			if size, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("box: size: %w", err)
			}
		}
		m, err := meshgen.Box(size.X, size.Y, size.Z)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		return &sexpMesh{m: m, desc: fmt.Sprintf("box %gx%gx%g", size.X, size.Y, size.Z)}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :height 2 :radius 0.5 :segments 24)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		height, radius := 1.0, 0.5
		segments := 0
		var err error
		if v, ok := pa.kw["height"]; ok {
			if height, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: height: %w", err)
			}
		}
		if v, ok := pa.kw["radius"]; ok {
			if radius, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
			}
		}
		if v, ok := pa.kw["segments"]; ok {
			if segments, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: segments: %w", err)
			}
		}
		m, err := meshgen.Cylinder(height, radius, segments)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		return &sexpMesh{m: m, desc: fmt.Sprintf("cylinder h=%g r=%g", height, radius)}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere :radius 1 :cells 48) — marching cubes tessellation
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		radius := 0.5
		cells := 0
		var err error
		if v, ok := pa.kw["radius"]; ok {
			if radius, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
			}
		}
		if v, ok := pa.kw["cells"]; ok {
			if cells, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: cells: %w", err)
			}
		}
		m, err := meshgen.Sphere(radius, cells)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		return &sexpMesh{m: m, desc: fmt.Sprintf("sphere r=%g", radius)}, nil
	})

	// -----------------------------------------------------------------------
	// (instance (box :size (vec3 1 1 1))
	//           :name "crate" :at (vec3 2 0 0) :rotate (vec3 0 0 45)
	//           :casts true :visible true)
	// -----------------------------------------------------------------------
	env.AddFunction("instance", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("instance requires a mesh as first argument")
		}
		m, err := toMesh(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("instance: %w", err)
		}

		instName := nextInstanceName()
		if v, ok := pa.kw["name"]; ok {
			if instName, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("instance: name: %w", err)
			}
		}

		tr := geom.Identity()
		if v, ok := pa.kw["rotate"]; ok {
			deg, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("instance: rotate: %w", err)
			}
			tr = geom.RotateZ(deg.Z).Mul(geom.RotateY(deg.Y)).Mul(geom.RotateX(deg.X))
		}
		if v, ok := pa.kw["at"]; ok {
			at, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("instance: at: %w", err)
			}
			tr = geom.Translate(at).Mul(tr)
		}

		casts, visible := true, true
		if v, ok := pa.kw["casts"]; ok {
			if casts, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("instance: casts: %w", err)
			}
		}
		if v, ok := pa.kw["visible"]; ok {
			if visible, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("instance: visible: %w", err)
			}
		}

		s.AddInstance(shadow.Instance{
			Name:        instName,
			Mesh:        m,
			Transform:   tr,
			Visible:     visible,
			CastsShadow: casts,
		})
		return &zygo.SexpStr{S: instName}, nil
	})
}
