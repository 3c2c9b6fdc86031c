package oml

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/orrery-engine/orrery/pkg/math"
)

// ParseFile opens and parses an OML document from disk.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(bufio.NewReader(f))
}

// Parse reads an OML document from r. Structural problems (unreadable
// XML, a root element other than <orrery>, no scene section) abort with
// ErrInvalidDocument. Content problems fall back to defaults and are
// recorded in Document.Degradations.
func Parse(r io.Reader) (*Document, error) {
	doc := &Document{}
	p := &parser{dec: xml.NewDecoder(r), doc: doc}

	root := false
	for {
		tok, err := p.dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !root {
			if se.Name.Local != "orrery" {
				return nil, fmt.Errorf("%w: root element is <%s>, want <orrery>", ErrInvalidDocument, se.Name.Local)
			}
			root = true
			continue
		}
		switch se.Name.Local {
		case "defs":
			if err := p.parseDefs(); err != nil {
				return nil, err
			}
		case "scene":
			if err := p.parseScene(se); err != nil {
				return nil, err
			}
		default:
			p.degrade(se.Name.Local, attrValue(se, "id"), "", "element not allowed here")
			if err := p.skip(); err != nil {
				return nil, err
			}
		}
	}
	if !root {
		return nil, fmt.Errorf("%w: no root element", ErrInvalidDocument)
	}
	if len(doc.Scenes) == 0 {
		return nil, fmt.Errorf("%w: no scene section", ErrInvalidDocument)
	}
	return doc, nil
}

type parser struct {
	dec *xml.Decoder
	doc *Document
}

func (p *parser) degrade(element, id, attr, reason string) {
	p.doc.Degradations = append(p.doc.Degradations, Degradation{
		Element: element,
		ID:      id,
		Attr:    attr,
		Reason:  reason,
	})
}

// skip consumes the rest of the current element.
func (p *parser) skip() error {
	if err := p.dec.Skip(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}

func (p *parser) parseDefs() error {
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "geometry":
				p.doc.Geometries = append(p.doc.Geometries, p.parseGeometry(se))
			case "material":
				p.doc.Materials = append(p.doc.Materials, p.parseMaterial(se))
			default:
				p.degrade(se.Name.Local, attrValue(se, "id"), "", "element not allowed in defs")
			}
			if err := p.skip(); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (p *parser) parseGeometry(se xml.StartElement) Geometry {
	g := DefaultGeometry()
	g.ID = attrValue(se, "id")
	for _, attr := range se.Attr {
		val := attr.Value
		switch attr.Name.Local {
		case "id":
		case "type":
			if val == "" {
				continue
			}
			t, known := parseGeometryType(val)
			if !known {
				p.degrade("geometry", g.ID, "type", fmt.Sprintf("unknown type %q, using box", val))
			}
			g.Type = t
		case "size":
			g.Size = p.tripleAttr("geometry", g.ID, "size", val, g.Size)
		case "radius":
			g.Radius = p.floatAttr("geometry", g.ID, "radius", val, g.Radius)
		case "tube":
			g.Tube = p.floatAttr("geometry", g.ID, "tube", val, g.Tube)
		case "height":
			g.Height = p.floatAttr("geometry", g.ID, "height", val, g.Height)
		case "segments":
			g.Segments = p.intAttr("geometry", g.ID, "segments", val, g.Segments)
		default:
			p.degrade("geometry", g.ID, attr.Name.Local, "unknown attribute")
		}
	}
	return g
}

func (p *parser) parseMaterial(se xml.StartElement) Material {
	m := DefaultMaterial()
	m.ID = attrValue(se, "id")
	for _, attr := range se.Attr {
		val := attr.Value
		switch attr.Name.Local {
		case "id":
		case "type":
			if val == "" {
				continue
			}
			t, known := parseMaterialType(val)
			if !known {
				p.degrade("material", m.ID, "type", fmt.Sprintf("unknown type %q, using standard", val))
			}
			m.Type = t
		case "color":
			m.Color = p.tripleAttr("material", m.ID, "color", val, m.Color)
		case "metalness":
			m.Metalness = p.floatAttr("material", m.ID, "metalness", val, m.Metalness)
		case "roughness":
			m.Roughness = p.floatAttr("material", m.ID, "roughness", val, m.Roughness)
		case "opacity":
			m.Opacity = p.floatAttr("material", m.ID, "opacity", val, m.Opacity)
		default:
			p.degrade("material", m.ID, attr.Name.Local, "unknown attribute")
		}
	}
	return m
}

func (p *parser) parseScene(se xml.StartElement) error {
	sc := Scene{Ambient: 0.2}
	sc.ID = attrValue(se, "id")
	for _, attr := range se.Attr {
		switch attr.Name.Local {
		case "id":
		case "ambient":
			sc.Ambient = p.floatAttr("scene", sc.ID, "ambient", attr.Value, sc.Ambient)
		case "camera":
			sc.CameraID = attr.Value
		default:
			p.degrade("scene", sc.ID, attr.Name.Local, "unknown attribute")
		}
	}
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		switch ce := tok.(type) {
		case xml.StartElement:
			switch ce.Name.Local {
			case "camera":
				cam, err := p.parseCamera(ce)
				if err != nil {
					return err
				}
				sc.Cameras = append(sc.Cameras, cam)
			case "light":
				light, err := p.parseLight(ce)
				if err != nil {
					return err
				}
				sc.Lights = append(sc.Lights, light)
			case "mesh":
				item, err := p.parseItem(ce, ItemMesh)
				if err != nil {
					return err
				}
				sc.Items = append(sc.Items, item)
			case "group":
				item, err := p.parseItem(ce, ItemGroup)
				if err != nil {
					return err
				}
				sc.Items = append(sc.Items, item)
			default:
				p.degrade(ce.Name.Local, attrValue(ce, "id"), "", "element not allowed in scene")
				if err := p.skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			p.doc.Scenes = append(p.doc.Scenes, sc)
			return nil
		}
	}
}

func (p *parser) parseCamera(se xml.StartElement) (Camera, error) {
	cam := Camera{
		Position: math.Vec3{Y: 2, Z: 8},
		FOV:      60,
		Near:     0.1,
		Far:      1000,
	}
	cam.ID = attrValue(se, "id")
	for _, attr := range se.Attr {
		val := attr.Value
		switch attr.Name.Local {
		case "id":
		case "position":
			cam.Position = p.tripleAttr("camera", cam.ID, "position", val, cam.Position)
		case "target":
			cam.Target = p.tripleAttr("camera", cam.ID, "target", val, cam.Target)
		case "fov":
			cam.FOV = p.floatAttr("camera", cam.ID, "fov", val, cam.FOV)
		case "near":
			cam.Near = p.floatAttr("camera", cam.ID, "near", val, cam.Near)
		case "far":
			cam.Far = p.floatAttr("camera", cam.ID, "far", val, cam.Far)
		default:
			p.degrade("camera", cam.ID, attr.Name.Local, "unknown attribute")
		}
	}
	animates, err := p.collectAnimates("camera", cam.ID)
	if err != nil {
		return cam, err
	}
	cam.Animates = animates
	return cam, nil
}

func (p *parser) parseLight(se xml.StartElement) (Light, error) {
	light := Light{
		Color:     math.Vec3{X: 1, Y: 1, Z: 1},
		Intensity: 1,
		Position:  math.Vec3{Y: 1},
	}
	light.ID = attrValue(se, "id")
	for _, attr := range se.Attr {
		val := attr.Value
		switch attr.Name.Local {
		case "id":
		case "type":
			if val == "" {
				continue
			}
			t, known := parseLightType(val)
			if !known {
				p.degrade("light", light.ID, "type", fmt.Sprintf("unknown type %q, using directional", val))
			}
			light.Type = t
		case "color":
			light.Color = p.tripleAttr("light", light.ID, "color", val, light.Color)
		case "intensity":
			light.Intensity = p.floatAttr("light", light.ID, "intensity", val, light.Intensity)
		case "position":
			light.Position = p.tripleAttr("light", light.ID, "position", val, light.Position)
		default:
			p.degrade("light", light.ID, attr.Name.Local, "unknown attribute")
		}
	}
	animates, err := p.collectAnimates("light", light.ID)
	if err != nil {
		return light, err
	}
	light.Animates = animates
	return light, nil
}

func (p *parser) parseItem(se xml.StartElement, kind ItemKind) (Item, error) {
	it := Item{
		Kind:  kind,
		Scale: math.Vec3{X: 1, Y: 1, Z: 1},
	}
	name := kind.String()
	it.ID = attrValue(se, "id")
	for _, attr := range se.Attr {
		val := attr.Value
		switch attr.Name.Local {
		case "id":
		case "position":
			it.Position = p.tripleAttr(name, it.ID, "position", val, it.Position)
		case "rotation":
			it.Rotation = p.tripleAttr(name, it.ID, "rotation", val, it.Rotation)
		case "scale":
			it.Scale = p.tripleAttr(name, it.ID, "scale", val, it.Scale)
		case "geometry":
			if kind == ItemMesh {
				it.Geometry = val
			} else {
				p.degrade(name, it.ID, "geometry", "attribute only valid on mesh")
			}
		case "material":
			if kind == ItemMesh {
				it.Material = val
			} else {
				p.degrade(name, it.ID, "material", "attribute only valid on mesh")
			}
		default:
			p.degrade(name, it.ID, attr.Name.Local, "unknown attribute")
		}
	}
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return it, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		switch ce := tok.(type) {
		case xml.StartElement:
			switch {
			case ce.Name.Local == "animate":
				it.Animates = append(it.Animates, p.parseAnimate(ce, it.ID))
				if err := p.skip(); err != nil {
					return it, err
				}
			case kind == ItemGroup && ce.Name.Local == "mesh":
				child, err := p.parseItem(ce, ItemMesh)
				if err != nil {
					return it, err
				}
				it.Children = append(it.Children, child)
			case kind == ItemGroup && ce.Name.Local == "group":
				child, err := p.parseItem(ce, ItemGroup)
				if err != nil {
					return it, err
				}
				it.Children = append(it.Children, child)
			default:
				p.degrade(ce.Name.Local, attrValue(ce, "id"), "", "element not allowed in "+name)
				if err := p.skip(); err != nil {
					return it, err
				}
			}
		case xml.EndElement:
			return it, nil
		}
	}
}

// collectAnimates consumes the remaining children of an element that
// only allows animate descendants.
func (p *parser) collectAnimates(element, ownerID string) ([]Animate, error) {
	var out []Animate
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "animate" {
				out = append(out, p.parseAnimate(se, ownerID))
			} else {
				p.degrade(se.Name.Local, attrValue(se, "id"), "", "element not allowed in "+element)
			}
			if err := p.skip(); err != nil {
				return nil, err
			}
		case xml.EndElement:
			return out, nil
		}
	}
}

// parseAnimate coerces one animate element. Timing attributes that fail
// to parse keep their defaults; value vectors are kept exactly as
// authored so the animation engine can validate arity and key times at
// registration.
func (p *parser) parseAnimate(se xml.StartElement, ownerID string) Animate {
	a := Animate{
		TargetID: ownerID,
		Dur:      1,
		Repeat:   1,
		Fill:     "freeze",
	}
	for _, attr := range se.Attr {
		val := attr.Value
		switch attr.Name.Local {
		case "attributeName":
			a.Attribute = val
		case "from":
			a.From = p.vectorAttr("animate", ownerID, "from", val)
		case "to":
			a.To = p.vectorAttr("animate", ownerID, "to", val)
		case "values":
			a.Values = p.vectorListAttr("animate", ownerID, "values", val)
		case "keyTimes":
			a.KeyTimes = p.floatListAttr("animate", ownerID, "keyTimes", val)
		case "dur":
			a.Dur = p.clockAttr("animate", ownerID, "dur", val, a.Dur)
		case "begin":
			a.Begin = p.clockAttr("animate", ownerID, "begin", val, a.Begin)
		case "repeatCount":
			if strings.TrimSpace(val) == "indefinite" {
				a.Repeat = RepeatIndefinite
			} else if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
				a.Repeat = n
			} else {
				p.degrade("animate", ownerID, "repeatCount", fmt.Sprintf("unparseable count %q, using 1", val))
			}
		case "fill":
			switch val {
			case "freeze", "remove":
				a.Fill = val
			default:
				p.degrade("animate", ownerID, "fill", fmt.Sprintf("unknown fill %q, using freeze", val))
			}
		default:
			p.degrade("animate", ownerID, attr.Name.Local, "unknown attribute")
		}
	}
	return a
}

// Attribute coercion. The degrading variants record the fallback and
// return the caller's default so a typo never takes the document down.

func attrValue(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (p *parser) floatAttr(element, id, attr, val string, def float32) float32 {
	v, err := strconv.ParseFloat(strings.TrimSpace(val), 32)
	if err != nil {
		p.degrade(element, id, attr, fmt.Sprintf("unparseable number %q", val))
		return def
	}
	return float32(v)
}

func (p *parser) intAttr(element, id, attr, val string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		p.degrade(element, id, attr, fmt.Sprintf("unparseable integer %q", val))
		return def
	}
	return v
}

func (p *parser) clockAttr(element, id, attr, val string, def float64) float64 {
	v, err := parseClock(val)
	if err != nil {
		p.degrade(element, id, attr, fmt.Sprintf("unparseable clock value %q", val))
		return def
	}
	return v
}

func (p *parser) tripleAttr(element, id, attr, val string, def math.Vec3) math.Vec3 {
	vec, err := parseVector(val)
	if err != nil || len(vec) != 3 {
		p.degrade(element, id, attr, fmt.Sprintf("want three comma separated numbers, got %q", val))
		return def
	}
	return math.Vec3{X: vec[0], Y: vec[1], Z: vec[2]}
}

func (p *parser) vectorAttr(element, id, attr, val string) []float32 {
	vec, err := parseVector(val)
	if err != nil {
		p.degrade(element, id, attr, fmt.Sprintf("unparseable vector %q", val))
		return nil
	}
	return vec
}

func (p *parser) vectorListAttr(element, id, attr, val string) [][]float32 {
	var out [][]float32
	for _, part := range strings.Split(val, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		vec, err := parseVector(part)
		if err != nil {
			p.degrade(element, id, attr, fmt.Sprintf("unparseable vector %q", part))
			return nil
		}
		out = append(out, vec)
	}
	return out
}

func (p *parser) floatListAttr(element, id, attr, val string) []float32 {
	var out []float32
	for _, part := range strings.Split(val, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 32)
		if err != nil {
			p.degrade(element, id, attr, fmt.Sprintf("unparseable number %q", part))
			return nil
		}
		out = append(out, float32(v))
	}
	return out
}

// parseVector parses a comma separated float list ("0, 1.5, 3").
func parseVector(s string) ([]float32, error) {
	parts := strings.Split(s, ",")
	out := make([]float32, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, err
		}
		out = append(out, float32(v))
	}
	return out, nil
}

// parseClock parses a SMIL clock value: "2s", "150ms" or a bare number
// of seconds.
func parseClock(s string) (float64, error) {
	s = strings.TrimSpace(s)
	scale := 1.0
	switch {
	case strings.HasSuffix(s, "ms"):
		s, scale = strings.TrimSuffix(s, "ms"), 0.001
	case strings.HasSuffix(s, "s"):
		s = strings.TrimSuffix(s, "s")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return v * scale, nil
}

func parseGeometryType(s string) (GeometryType, bool) {
	switch s {
	case "box":
		return GeometryBox, true
	case "sphere":
		return GeometrySphere, true
	case "plane":
		return GeometryPlane, true
	case "cylinder":
		return GeometryCylinder, true
	case "cone":
		return GeometryCone, true
	case "torus":
		return GeometryTorus, true
	default:
		return GeometryBox, false
	}
}

func parseMaterialType(s string) (MaterialType, bool) {
	switch s {
	case "standard":
		return MaterialStandard, true
	case "basic":
		return MaterialBasic, true
	default:
		return MaterialStandard, false
	}
}

func parseLightType(s string) (LightType, bool) {
	switch s {
	case "directional":
		return LightDirectional, true
	case "point":
		return LightPoint, true
	case "ambient":
		return LightAmbient, true
	default:
		return LightDirectional, false
	}
}
