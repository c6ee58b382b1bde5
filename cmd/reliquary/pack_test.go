package main

import (
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/samcharles93/reliquary/internal/assets"
	"github.com/samcharles93/reliquary/pkg/arc"
)

const sampleManifest = `
engine_version: "2019.4.1"
platform: 5
externals:
  - guid: "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
    ref_type: 2
    path: "shared.arc"
script_refs:
  - file_index: 0
    path_id: 10
objects:
  - id: 10
    tag: script
    script:
      class: "PlayerController"
      namespace: "Game.Core"
      assembly: "Assembly-CSharp"
  - id: 11
    tag: settings
    settings:
      version: "2019.4.1"
      flags: 3
  - id: 12
    tag: text
    text:
      name: "readme"
      content: "hello"
`

func TestManifestBuildsLoadableContainer(t *testing.T) {
	t.Parallel()

	var m manifest
	if err := yaml.Unmarshal([]byte(sampleManifest), &m); err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	b, err := m.builder()
	if err != nil {
		t.Fatalf("builder: %v", err)
	}
	data, err := b.Bytes()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	c, err := arc.Load(data, arc.LoadConfig{Name: "main.arc", Factory: assets.Factory{}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("objects: %d", c.Len())
	}
	if c.Meta.EngineVersion != "2019.4.1" || c.Meta.Platform != 5 {
		t.Fatalf("metadata: %+v", c.Meta)
	}
	if len(c.Meta.Externals) != 1 || c.Meta.Externals[0].Path != "shared.arc" {
		t.Fatalf("externals: %+v", c.Meta.Externals)
	}
	if len(c.Meta.ScriptRefs) != 1 || c.Meta.ScriptRefs[0].PathID != 10 {
		t.Fatalf("script refs: %+v", c.Meta.ScriptRefs)
	}

	a, err := c.Get(10)
	if err != nil {
		t.Fatalf("get script: %v", err)
	}
	script, ok := a.(*assets.Script)
	if !ok || script.ClassName != "PlayerController" || script.Assembly != "Assembly-CSharp" {
		t.Fatalf("script: %#v", a)
	}

	a, err = c.Get(12)
	if err != nil {
		t.Fatalf("get text: %v", err)
	}
	txt, ok := a.(*assets.Text)
	if !ok || txt.Name() != "readme" || string(txt.Content) != "hello" {
		t.Fatalf("text: %#v", a)
	}
}

func TestManifestRejectsUnknownTag(t *testing.T) {
	t.Parallel()

	var m manifest
	src := `
objects:
  - id: 1
    tag: widget
`
	if err := yaml.Unmarshal([]byte(src), &m); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := m.builder(); err == nil {
		t.Fatalf("unknown tag accepted")
	}
}

func TestManifestRequiresKindBlock(t *testing.T) {
	t.Parallel()

	var m manifest
	src := `
objects:
  - id: 1
    tag: script
`
	if err := yaml.Unmarshal([]byte(src), &m); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := m.builder(); err == nil {
		t.Fatalf("missing script block accepted")
	}
}

func TestPayloadOrderMatchesLoader(t *testing.T) {
	t.Parallel()

	// A big-endian manifest must produce payloads the loader reads back
	// intact under the resolved byte order.
	var m manifest
	src := `
big_endian: true
objects:
  - id: 1
    tag: settings
    settings:
      version: "5.6.7"
      flags: 258
`
	if err := yaml.Unmarshal([]byte(src), &m); err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := m.builder()
	if err != nil {
		t.Fatalf("builder: %v", err)
	}
	data, err := b.Bytes()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	c, err := arc.Load(data, arc.LoadConfig{Name: "be.arc", Factory: assets.Factory{}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	a, err := c.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	settings, ok := a.(*assets.Settings)
	if !ok || settings.Version != "5.6.7" || settings.Flags != 258 {
		t.Fatalf("settings: %#v", a)
	}
}
