package oml

import (
	"errors"
	"strings"
	"testing"
)

func parseString(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}

func TestParse_MinimalDocument(t *testing.T) {
	doc := parseString(t, `
		<orrery>
			<scene id="main">
				<mesh id="cube"/>
			</scene>
		</orrery>`)

	if len(doc.Scenes) != 1 {
		t.Fatalf("expected 1 scene, got %d", len(doc.Scenes))
	}
	sc := doc.Scenes[0]
	if sc.ID != "main" {
		t.Errorf("scene id = %q, want \"main\"", sc.ID)
	}
	if sc.Ambient != 0.2 {
		t.Errorf("default ambient = %v, want 0.2", sc.Ambient)
	}
	if len(sc.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(sc.Items))
	}
	mesh := sc.Items[0]
	if mesh.Kind != ItemMesh || mesh.ID != "cube" {
		t.Errorf("item = %v %q, want mesh \"cube\"", mesh.Kind, mesh.ID)
	}
	if mesh.Scale.X != 1 || mesh.Scale.Y != 1 || mesh.Scale.Z != 1 {
		t.Errorf("default scale = %v, want (1,1,1)", mesh.Scale)
	}
	if mesh.Position.X != 0 || mesh.Rotation.Y != 0 {
		t.Errorf("default position/rotation should be zero, got %v %v", mesh.Position, mesh.Rotation)
	}
}

func TestParse_Defs(t *testing.T) {
	doc := parseString(t, `
		<orrery>
			<defs>
				<geometry id="ball" type="sphere" radius="2.5" segments="32"/>
				<geometry id="slab" type="box" size="4,0.5,4"/>
				<material id="steel" type="standard" color="0.7,0.7,0.8" metalness="0.9" roughness="0.3"/>
			</defs>
			<scene><mesh/></scene>
		</orrery>`)

	ball, ok := doc.GeometryByID("ball")
	if !ok {
		t.Fatal("geometry \"ball\" not found")
	}
	if ball.Type != GeometrySphere || ball.Radius != 2.5 || ball.Segments != 32 {
		t.Errorf("ball = %v r=%v segs=%d, want sphere r=2.5 segs=32", ball.Type, ball.Radius, ball.Segments)
	}

	slab, ok := doc.GeometryByID("slab")
	if !ok {
		t.Fatal("geometry \"slab\" not found")
	}
	if slab.Size.X != 4 || slab.Size.Y != 0.5 || slab.Size.Z != 4 {
		t.Errorf("slab size = %v, want (4,0.5,4)", slab.Size)
	}

	steel, ok := doc.MaterialByID("steel")
	if !ok {
		t.Fatal("material \"steel\" not found")
	}
	if steel.Metalness != 0.9 || steel.Roughness != 0.3 {
		t.Errorf("steel metalness/roughness = %v/%v, want 0.9/0.3", steel.Metalness, steel.Roughness)
	}
	if steel.Opacity != 1 {
		t.Errorf("default opacity = %v, want 1", steel.Opacity)
	}

	if _, ok := doc.GeometryByID("missing"); ok {
		t.Error("lookup of undefined geometry should fail")
	}
}

func TestParse_AnimateSimple(t *testing.T) {
	doc := parseString(t, `
		<orrery>
			<scene>
				<mesh id="spinner">
					<animate attributeName="rotation" from="0,0,0" to="0,360,0"
						dur="2s" begin="500ms" repeatCount="indefinite"/>
				</mesh>
			</scene>
		</orrery>`)

	mesh := doc.Scenes[0].Items[0]
	if len(mesh.Animates) != 1 {
		t.Fatalf("expected 1 animate, got %d", len(mesh.Animates))
	}
	a := mesh.Animates[0]
	if a.TargetID != "spinner" {
		t.Errorf("TargetID = %q, want \"spinner\"", a.TargetID)
	}
	if a.Attribute != "rotation" {
		t.Errorf("Attribute = %q, want \"rotation\"", a.Attribute)
	}
	if len(a.From) != 3 || len(a.To) != 3 || a.To[1] != 360 {
		t.Errorf("from/to = %v/%v, want triples with to.y=360", a.From, a.To)
	}
	if a.Dur != 2 {
		t.Errorf("Dur = %v, want 2", a.Dur)
	}
	if a.Begin != 0.5 {
		t.Errorf("Begin = %v, want 0.5", a.Begin)
	}
	if a.Repeat != RepeatIndefinite {
		t.Errorf("Repeat = %d, want RepeatIndefinite", a.Repeat)
	}
	if a.Fill != "freeze" {
		t.Errorf("default Fill = %q, want \"freeze\"", a.Fill)
	}
	if a.Keyframed() {
		t.Error("from/to animate should not report keyframe mode")
	}
}

func TestParse_AnimateKeyframes(t *testing.T) {
	doc := parseString(t, `
		<orrery>
			<scene>
				<mesh id="bouncer">
					<animate attributeName="position"
						values="0,0,0; 0,2,0; 0,0,0" keyTimes="0; 0.5; 1" dur="3" fill="remove"/>
				</mesh>
			</scene>
		</orrery>`)

	a := doc.Scenes[0].Items[0].Animates[0]
	if !a.Keyframed() {
		t.Fatal("values animate should report keyframe mode")
	}
	if len(a.Values) != 3 || len(a.KeyTimes) != 3 {
		t.Fatalf("got %d values, %d keyTimes, want 3 and 3", len(a.Values), len(a.KeyTimes))
	}
	if a.Values[1][1] != 2 {
		t.Errorf("values[1] = %v, want (0,2,0)", a.Values[1])
	}
	if a.KeyTimes[1] != 0.5 {
		t.Errorf("keyTimes[1] = %v, want 0.5", a.KeyTimes[1])
	}
	if a.Dur != 3 {
		t.Errorf("bare numeric dur = %v, want 3 seconds", a.Dur)
	}
	if a.Fill != "remove" {
		t.Errorf("Fill = %q, want \"remove\"", a.Fill)
	}
	if len(doc.Degradations) != 0 {
		t.Errorf("unexpected degradations: %v", doc.Degradations)
	}
}

func TestParse_NestedGroups(t *testing.T) {
	doc := parseString(t, `
		<orrery>
			<scene>
				<group id="solar" rotation="0,45,0">
					<mesh id="sun" geometry="ball" material="gold"/>
					<group id="orbit" position="3,0,0">
						<mesh id="planet"/>
						<animate attributeName="rotation" from="0,0,0" to="0,360,0" dur="8s"/>
					</group>
				</group>
			</scene>
		</orrery>`)

	root := doc.Scenes[0].Items[0]
	if root.Kind != ItemGroup || root.ID != "solar" {
		t.Fatalf("root item = %v %q, want group \"solar\"", root.Kind, root.ID)
	}
	if root.Rotation.Y != 45 {
		t.Errorf("authored rotation stays in degrees: got %v, want 45", root.Rotation.Y)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(root.Children))
	}
	sun := root.Children[0]
	if sun.Geometry != "ball" || sun.Material != "gold" {
		t.Errorf("sun refs = %q/%q, want ball/gold", sun.Geometry, sun.Material)
	}
	orbit := root.Children[1]
	if orbit.Kind != ItemGroup || len(orbit.Children) != 1 {
		t.Fatalf("orbit should be a group with 1 child, got %v with %d", orbit.Kind, len(orbit.Children))
	}
	if len(orbit.Animates) != 1 || orbit.Animates[0].TargetID != "orbit" {
		t.Errorf("group animate should target \"orbit\", got %+v", orbit.Animates)
	}
}

func TestParse_UnknownTypesDegrade(t *testing.T) {
	doc := parseString(t, `
		<orrery>
			<defs>
				<geometry id="weird" type="dodecahedron"/>
				<material id="odd" type="phong"/>
			</defs>
			<scene>
				<light id="lamp" type="laser"/>
				<mesh/>
			</scene>
		</orrery>`)

	g, _ := doc.GeometryByID("weird")
	if g.Type != GeometryBox {
		t.Errorf("unknown geometry type should fall back to box, got %v", g.Type)
	}
	m, _ := doc.MaterialByID("odd")
	if m.Type != MaterialStandard {
		t.Errorf("unknown material type should fall back to standard, got %v", m.Type)
	}
	if doc.Scenes[0].Lights[0].Type != LightDirectional {
		t.Errorf("unknown light type should fall back to directional, got %v", doc.Scenes[0].Lights[0].Type)
	}
	if len(doc.Degradations) != 3 {
		t.Fatalf("expected 3 degradations, got %d: %v", len(doc.Degradations), doc.Degradations)
	}
	if doc.Degradations[0].Element != "geometry" || doc.Degradations[0].ID != "weird" {
		t.Errorf("first degradation should locate geometry#weird, got %v", doc.Degradations[0])
	}
}

func TestParse_MalformedAttributesDegrade(t *testing.T) {
	doc := parseString(t, `
		<orrery>
			<scene>
				<mesh id="m" position="1,2" rotation="a,b,c">
					<animate attributeName="position" from="0,0,0" to="1,1,1" dur="soon"/>
				</mesh>
			</scene>
		</orrery>`)

	mesh := doc.Scenes[0].Items[0]
	if mesh.Position.X != 0 || mesh.Rotation.X != 0 {
		t.Errorf("malformed triples should keep defaults, got %v %v", mesh.Position, mesh.Rotation)
	}
	if mesh.Animates[0].Dur != 1 {
		t.Errorf("malformed dur should keep default 1s, got %v", mesh.Animates[0].Dur)
	}
	if len(doc.Degradations) != 3 {
		t.Errorf("expected 3 degradations, got %d: %v", len(doc.Degradations), doc.Degradations)
	}
}

func TestParse_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"wrong root", `<scene><mesh/></scene>`},
		{"no scene", `<orrery><defs/></orrery>`},
		{"empty input", ``},
		{"unclosed element", `<orrery><scene><mesh`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			if !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("expected ErrInvalidDocument, got %v", err)
			}
		})
	}
}

func TestParse_CameraAndLight(t *testing.T) {
	doc := parseString(t, `
		<orrery>
			<scene camera="eye" ambient="0.35">
				<camera id="eye" position="0,4,10" target="0,1,0" fov="45" near="0.5" far="200"/>
				<light id="sun" type="directional" color="1,0.95,0.8" intensity="1.2" position="5,10,5"/>
				<light id="bulb" type="point" position="0,3,0"/>
				<mesh/>
			</scene>
		</orrery>`)

	sc := doc.Scenes[0]
	if sc.Ambient != 0.35 {
		t.Errorf("ambient = %v, want 0.35", sc.Ambient)
	}
	cam := sc.Camera()
	if cam == nil || cam.ID != "eye" {
		t.Fatalf("active camera = %v, want \"eye\"", cam)
	}
	if cam.FOV != 45 || cam.Near != 0.5 || cam.Far != 200 {
		t.Errorf("camera params = %v/%v/%v, want 45/0.5/200", cam.FOV, cam.Near, cam.Far)
	}
	if cam.Position.Z != 10 || cam.Target.Y != 1 {
		t.Errorf("camera position/target = %v/%v", cam.Position, cam.Target)
	}
	if len(sc.Lights) != 2 {
		t.Fatalf("expected 2 lights, got %d", len(sc.Lights))
	}
	if sc.Lights[0].Intensity != 1.2 {
		t.Errorf("sun intensity = %v, want 1.2", sc.Lights[0].Intensity)
	}
	if sc.Lights[1].Type != LightPoint {
		t.Errorf("bulb type = %v, want point", sc.Lights[1].Type)
	}
	if sc.Lights[1].Intensity != 1 {
		t.Errorf("default intensity = %v, want 1", sc.Lights[1].Intensity)
	}
}

func TestParse_SceneAnimationsFlatten(t *testing.T) {
	doc := parseString(t, `
		<orrery>
			<scene>
				<camera id="cam">
					<animate attributeName="position" from="0,2,8" to="0,2,4" dur="5s"/>
				</camera>
				<light id="lamp" type="point">
					<animate attributeName="color" from="1,0,0" to="0,0,1" dur="2s"/>
				</light>
				<group id="g">
					<animate attributeName="rotation" from="0,0,0" to="0,360,0" dur="10s"/>
					<mesh id="m">
						<animate attributeName="scale" from="1,1,1" to="2,2,2" dur="1s"/>
					</mesh>
				</group>
			</scene>
		</orrery>`)

	anims := doc.Scenes[0].Animations()
	if len(anims) != 4 {
		t.Fatalf("expected 4 flattened animations, got %d", len(anims))
	}
	targets := []string{anims[0].TargetID, anims[1].TargetID, anims[2].TargetID, anims[3].TargetID}
	want := []string{"cam", "lamp", "g", "m"}
	for i := range want {
		if targets[i] != want[i] {
			t.Errorf("animation %d targets %q, want %q", i, targets[i], want[i])
		}
	}
}

func TestParse_MultipleScenes(t *testing.T) {
	doc := parseString(t, `
		<orrery>
			<scene id="a"><mesh id="m1"/></scene>
			<scene id="b"><mesh id="m2"/></scene>
		</orrery>`)

	if len(doc.Scenes) != 2 {
		t.Fatalf("expected 2 scenes, got %d", len(doc.Scenes))
	}
	if sc, ok := doc.SceneByID("b"); !ok || sc.Items[0].ID != "m2" {
		t.Errorf("SceneByID(\"b\") should find the second scene")
	}
	if sc, ok := doc.SceneByID(""); !ok || sc.ID != "a" {
		t.Errorf("empty scene id should select the first scene")
	}
	if _, ok := doc.SceneByID("zzz"); ok {
		t.Error("lookup of undefined scene should fail")
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"2s", 2, false},
		{"150ms", 0.15, false},
		{"0.5s", 0.5, false},
		{"3", 3, false},
		{" 4s ", 4, false},
		{"0", 0, false},
		{"-1s", -1, false},
		{"fast", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseClock(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseClock(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseClock(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
