package viewer

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/orrery-engine/orrery/pkg/math"
	"github.com/orrery-engine/orrery/pkg/oml"
	"github.com/orrery-engine/orrery/pkg/scene"
)

// MaxLights is how many directional and point lights a frame uploads.
// Ambient lights are folded into the ambient term and do not count.
const MaxLights = 8

const vertexShaderSource = `#version 410 core
layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;

out vec3 vNormal;
out vec3 vWorldPos;

void main() {
    vec4 world = uModel * vec4(aPosition, 1.0);
    vWorldPos = world.xyz;
    vNormal = mat3(uModel) * aNormal;
    gl_Position = uProjection * uView * world;
}
`

const fragmentShaderSource = `#version 410 core
in vec3 vNormal;
in vec3 vWorldPos;

uniform vec3 uColor;
uniform float uMetalness;
uniform float uRoughness;
uniform float uOpacity;
uniform int uUnlit;

uniform vec3 uAmbient;
uniform vec3 uCameraPos;
uniform int uLightCount;
uniform vec3 uLightPositions[8];
uniform vec3 uLightColors[8];
uniform int uLightTypes[8];

out vec4 FragColor;

void main() {
    if (uUnlit == 1) {
        FragColor = vec4(uColor, uOpacity);
        return;
    }

    vec3 normal = normalize(vNormal);
    vec3 viewDir = normalize(uCameraPos - vWorldPos);
    float shininess = mix(256.0, 8.0, clamp(uRoughness, 0.0, 1.0));
    vec3 specTint = mix(vec3(0.04), uColor, uMetalness);
    vec3 diffuseColor = uColor * (1.0 - 0.7 * uMetalness);

    vec3 result = uAmbient * uColor;
    for (int i = 0; i < uLightCount; i++) {
        vec3 lightDir;
        float attenuation = 1.0;
        if (uLightTypes[i] == 0) {
            lightDir = normalize(uLightPositions[i]);
        } else {
            vec3 toLight = uLightPositions[i] - vWorldPos;
            float dist = max(length(toLight), 0.0001);
            lightDir = toLight / dist;
            attenuation = 1.0 / (1.0 + 0.09 * dist + 0.032 * dist * dist);
        }
        float diff = max(dot(normal, lightDir), 0.0);
        vec3 halfway = normalize(lightDir + viewDir);
        float spec = pow(max(dot(normal, halfway), 0.0), shininess);
        result += attenuation * uLightColors[i] * (diff * diffuseColor + spec * specTint);
    }
    FragColor = vec4(result, uOpacity);
}
`

// Renderer draws a built scene graph every frame. It owns one shader
// program; per-node material uniforms come straight from the node so
// animated values show without re-uploading geometry.
type Renderer struct {
	log     *zap.Logger
	program uint32

	// Uniform locations
	locModel      int32
	locView       int32
	locProjection int32
	locColor      int32
	locMetalness  int32
	locRoughness  int32
	locOpacity    int32
	locUnlit      int32

	locAmbient        int32
	locCameraPos      int32
	locLightCount     int32
	locLightPositions int32
	locLightColors    int32
	locLightTypes     int32

	width  int32
	height int32
}

// NewRenderer initializes OpenGL and compiles the scene shader. The GL
// context must be current on the calling thread.
func NewRenderer(log *zap.Logger, width, height int32) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	log.Info("OpenGL initialized", zap.String("version", version))

	program, err := compileProgram(vertexShaderSource, fragmentShaderSource)
	if err != nil {
		return nil, fmt.Errorf("scene shader: %w", err)
	}

	r := &Renderer{
		log:     log,
		program: program,
		width:   width,
		height:  height,
	}

	r.locModel = uniform(program, "uModel")
	r.locView = uniform(program, "uView")
	r.locProjection = uniform(program, "uProjection")
	r.locColor = uniform(program, "uColor")
	r.locMetalness = uniform(program, "uMetalness")
	r.locRoughness = uniform(program, "uRoughness")
	r.locOpacity = uniform(program, "uOpacity")
	r.locUnlit = uniform(program, "uUnlit")
	r.locAmbient = uniform(program, "uAmbient")
	r.locCameraPos = uniform(program, "uCameraPos")
	r.locLightCount = uniform(program, "uLightCount")
	r.locLightPositions = uniform(program, "uLightPositions")
	r.locLightColors = uniform(program, "uLightColors")
	r.locLightTypes = uniform(program, "uLightTypes")

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(0.06, 0.07, 0.09, 1.0)
	gl.Viewport(0, 0, width, height)

	return r, nil
}

// Resize updates the viewport after a window resize.
func (r *Renderer) Resize(width, height int32) {
	r.width = width
	r.height = height
	gl.Viewport(0, 0, width, height)
}

// Draw renders one frame of the graph through the backend's uploaded
// resources. Opaque meshes draw first, translucent ones after with the
// depth mask off so fading objects do not punch holes in the scene.
func (r *Renderer) Draw(b *GLBackend, g *scene.Graph) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	eye := math.Vec3{Y: 2, Z: 8}
	target := math.Vec3{}
	fov, near, far := float32(60), float32(0.1), float32(1000)
	if cam := b.activeCamera(g.Camera); cam != nil {
		eye = cam.node.Position
		target = cam.target
		fov, near, far = cam.fov, cam.near, cam.far
	}

	aspect := float32(1)
	if r.height > 0 {
		aspect = float32(r.width) / float32(r.height)
	}
	proj := math.Perspective(fov*math32.Pi/180, aspect, near, far)
	view := math.LookAt(eye, target, math.Vec3{Y: 1})

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.locView, 1, false, &view[0])
	gl.UniformMatrix4fv(r.locProjection, 1, false, &proj[0])
	gl.Uniform3f(r.locCameraPos, eye.X, eye.Y, eye.Z)

	r.uploadLights(b, g)

	for pass := 0; pass < 2; pass++ {
		translucentPass := pass == 1
		if translucentPass {
			gl.DepthMask(false)
		}
		for i := range b.items {
			item := &b.items[i]
			if (item.node.Opacity < 1) != translucentPass {
				continue
			}
			r.drawItem(item)
		}
		if translucentPass {
			gl.DepthMask(true)
		}
	}

	gl.BindVertexArray(0)
}

// uploadLights packs the frame's light state. Ambient lights fold into
// the ambient term; the rest upload as arrays, capped at MaxLights.
func (r *Renderer) uploadLights(b *GLBackend, g *scene.Graph) {
	ambient := math.Vec3{X: g.Ambient, Y: g.Ambient, Z: g.Ambient}

	var positions [MaxLights * 3]float32
	var colors [MaxLights * 3]float32
	var types [MaxLights]int32
	count := 0

	for i := range b.lights {
		li := &b.lights[i]
		c := li.node.Color.Scale(li.intensity)
		if li.kind == oml.LightAmbient {
			ambient = ambient.Add(c)
			continue
		}
		if count == MaxLights {
			continue
		}
		positions[count*3] = li.node.Position.X
		positions[count*3+1] = li.node.Position.Y
		positions[count*3+2] = li.node.Position.Z
		colors[count*3] = c.X
		colors[count*3+1] = c.Y
		colors[count*3+2] = c.Z
		if li.kind == oml.LightPoint {
			types[count] = 1
		}
		count++
	}

	gl.Uniform3f(r.locAmbient, ambient.X, ambient.Y, ambient.Z)
	gl.Uniform1i(r.locLightCount, int32(count))
	if count > 0 {
		gl.Uniform3fv(r.locLightPositions, int32(count), &positions[0])
		gl.Uniform3fv(r.locLightColors, int32(count), &colors[0])
		gl.Uniform1iv(r.locLightTypes, int32(count), &types[0])
	}
}

func (r *Renderer) drawItem(item *drawItem) {
	model := worldMatrix(item.node)
	gl.UniformMatrix4fv(r.locModel, 1, false, &model[0])

	n := item.node
	gl.Uniform3f(r.locColor, n.Color.X, n.Color.Y, n.Color.Z)
	gl.Uniform1f(r.locMetalness, n.Metalness)
	gl.Uniform1f(r.locRoughness, n.Roughness)
	gl.Uniform1f(r.locOpacity, n.Opacity)
	if item.unlit {
		gl.Uniform1i(r.locUnlit, 1)
	} else {
		gl.Uniform1i(r.locUnlit, 0)
	}

	gl.BindVertexArray(item.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, item.indexCount, gl.UNSIGNED_INT, 0)
}

// worldMatrix composes the node's transform with its ancestors. Local
// order is translate, then Z*Y*X rotation, then scale.
func worldMatrix(n *scene.Node) math.Mat4 {
	local := math.Translate(n.Position.X, n.Position.Y, n.Position.Z).
		Mul(math.RotateZ(n.Rotation.Z)).
		Mul(math.RotateY(n.Rotation.Y)).
		Mul(math.RotateX(n.Rotation.X)).
		Mul(math.Scale(n.Scale.X, n.Scale.Y, n.Scale.Z))
	if n.Parent != nil {
		return worldMatrix(n.Parent).Mul(local)
	}
	return local
}

// Close releases the shader program.
func (r *Renderer) Close() {
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
}
