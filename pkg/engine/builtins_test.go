package engine

import (
	"testing"

	"github.com/chazu/partkit/pkg/assembly"
	"github.com/chazu/partkit/pkg/geom"
	"github.com/chazu/partkit/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessSource(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(part "a" :scale 2)`,
			expect: `(part "a" "__kw_scale" 2)`,
		},
		{
			name:   "multiple keywords",
			input:  `(node "a" "top" :at v :size 2)`,
			expect: `(node "a" "top" "__kw_at" v "__kw_size" 2)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "escaped quote in string",
			input:  `"say \"surface-node\" :x"`,
			expect: `"say \"surface-node\" :x"`,
		},
		{
			name:   "backtick string preserved",
			input:  "`raw :kw surface-node`",
			expect: "`raw :kw surface-node`",
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(surface-node :max-torque 1)`,
			expect: `(surface_node "__kw_max-torque" 1)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative number preserved",
			input:  `(vec3 -1 0 x-2)`,
			expect: `(vec3 -1 0 x-2)`,
		},
		{
			name:   "comment converted to // style",
			input:  ";; comment with :keyword\n(root \"a\")",
			expect: "// comment with :keyword\n(root \"a\")",
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expect, preprocessSource(tt.input))
		})
	}
}

// ---------------------------------------------------------------------------
// Builtin tests
// ---------------------------------------------------------------------------

func mustEval(t *testing.T, src string) *assembly.Assembly {
	t.Helper()
	a, evalErrs, err := NewEngine().Evaluate(src)
	require.NoError(t, err)
	require.Empty(t, evalErrs)
	return a
}

func evalErr(t *testing.T, src string) string {
	t.Helper()
	a, evalErrs, err := NewEngine().Evaluate(src)
	require.NoError(t, err)
	require.Nil(t, a)
	require.NotEmpty(t, evalErrs, "expected an eval error for %q", src)
	return evalErrs[0].Message
}

const roverSource = `
;; A small rover: chassis with two wheels and a fuel tank on top.
(def chassis (part "chassis" :at (vec3 0 1 0)))
(node chassis "top" :at (vec3 0 0.5 0) :dir (vec3 0 1 0) :size 2)
(node chassis "left" :at (vec3 -1 0 0) :dir (vec3 -1 0 0))
(node chassis "right" :at (vec3 1 0 0) :dir (vec3 1 0 0))
(transform chassis "body")
(transform chassis "lights" :under "body")

(part "tank" :at (vec3 0 2 0))
(node "tank" "bottom" :at (vec3 0 -0.5 0) :dir (vec3 0 -1 0))
(attach "tank" "chassis" :via "bottom" :to "top")

(part "wheelL" :at (vec3 -2 1 0) :scale 1.5)
(surface-node "wheelL" :at (vec3 1 0 0))
(attach "wheelL" chassis :to "left")
(controller "wheelL" :group 3)
(module "wheelL" "WheelMotor" :maxTorque 20 :reversed false)

(part "wheelR" :at (vec3 2 1 0) :rot (vec3 0 180 0))
(surface-node "wheelR" :at (vec3 1 0 0))
(attach "wheelR" chassis :to "right")
(controller "wheelR" :group "3")
(root "chassis")
`

func TestRoverProgram(t *testing.T) {
	a := mustEval(t, roverSource)
	require.Equal(t, 4, a.Len())

	chassis := a.Lookup("chassis")
	require.Equal(t, geom.Vec3{Y: 1}, chassis.Transform.Position)
	require.Len(t, chassis.Nodes, 3)
	require.Equal(t, "top", chassis.Nodes[0].ID)
	require.Equal(t, 2, chassis.Nodes[0].Size)
	lights, ok := scene.FindFirstByName(chassis.Model, "lights")
	require.True(t, ok)
	require.Equal(t, "chassis/body/lights", lights.Path())

	tank := a.Lookup("tank")
	require.Equal(t, chassis.ID, tank.Parent)
	require.Equal(t, tank.ID, chassis.FindNode("top").AttachedPart)

	wheelL := a.Lookup("wheelL")
	require.Equal(t, 1.5, wheelL.Scale)
	require.Equal(t, chassis.ID, wheelL.Parent)
	require.NotNil(t, wheelL.SurfaceNode)
	require.Equal(t, chassis.ID, wheelL.SurfaceNode.AttachedPart)
	ctrl, ok := wheelL.Modules[0].(*assembly.Controller)
	require.True(t, ok, "wheelL module 0 = %#v", wheelL.Modules[0])
	require.Equal(t, "3", ctrl.GroupTag())
	motor, ok := wheelL.Modules[1].(*assembly.Generic)
	require.True(t, ok, "wheelL module 1 = %#v", wheelL.Modules[1])
	require.Equal(t, "WheelMotor", motor.Name)
	require.Equal(t, "20", motor.Fields["maxTorque"])
	require.Equal(t, "false", motor.Fields["reversed"])

	wheelR := a.Lookup("wheelR")
	require.Equal(t, geom.Vec3{Y: 180}, wheelR.Transform.Rotation)
	require.Equal(t, "3", wheelR.Modules[0].(*assembly.Controller).GroupTag())

	require.Empty(t, assembly.Validate(a))
}

func TestRescaleBuiltin(t *testing.T) {
	a := mustEval(t, `
(part "base")
(node "base" "side" :at (vec3 1 0 0))
(part "arm" :at (vec3 1 0 0))
(node "arm" "end" :at (vec3 0 0 0))
(attach "arm" "base" :via "end" :to "side")
(def moved (rescale "base" 1 2))
(def passive (rescale "base" 2 4 :user false))
(node "base" "moved" :size moved)
(node "base" "passive" :size passive)
`)
	base := a.Lookup("base")
	require.Equal(t, geom.Vec3{X: 4}, base.FindNode("side").Position)
	require.Equal(t, 4.0, base.Scale)
	require.Equal(t, geom.Vec3{X: 2}, a.Lookup("arm").Transform.Position)
	require.Equal(t, 1, base.FindNode("moved").Size, "user rescale shifts the arm")
	require.Equal(t, 0, base.FindNode("passive").Size, "passive rescale shifts nothing")
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"vec3 arity", `(vec3 1 2)`, "exactly 3"},
		{"vec3 type", `(vec3 1 "a" 3)`, "vec3: y"},
		{"part no name", `(part)`, "requires a name"},
		{"duplicate part", `(part "a") (part "a")`, "already defined"},
		{"part bad at", `(part "a" :at 3)`, "expected vec3"},
		{"unknown part", `(node "ghost" "top")`, "no part named"},
		{"duplicate node", `(part "a") (node "a" "n") (node "a" "n")`, "duplicate"},
		{"attach missing node", `(part "a") (part "b") (attach "b" "a" :via "x")`, "no such attach node"},
		{"transform under missing", `(part "a") (transform "a" "x" :under "y")`, "no transform"},
		{"rescale zero", `(part "a") (rescale "a" 0 1)`, "must be positive"},
		{"rescale user type", `(part "a") (rescale "a" 1 2 :user 1)`, "expected true or false"},
		{"root unknown", `(root "nope")`, "no part named"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Contains(t, evalErr(t, tt.src), tt.want)
		})
	}
}

func TestParseArgs(t *testing.T) {
	kw := func(name string) zygo.Sexp { return &zygo.SexpStr{S: kwPrefix + name} }
	args := []zygo.Sexp{
		kw("a"), &zygo.SexpInt{Val: 1},
		&zygo.SexpStr{S: "pos"},
		kw("b"), &zygo.SexpInt{Val: 2},
		kw("a"), &zygo.SexpInt{Val: 3},
		kw("flag"),
	}
	pa := parseArgs(args)

	require.Len(t, pa.positional, 1)
	require.Equal(t, "pos", pa.positional[0].(*zygo.SexpStr).S)
	require.Equal(t, int64(3), pa.kw["a"].(*zygo.SexpInt).Val, "last :a wins")
	require.Equal(t, zygo.SexpNull, pa.kw["flag"])
	require.Equal(t, []string{"a", "b", "flag"}, pa.order)
}
