package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/reliquary/pkg/arc"
)

func packCmd() *cli.Command {
	return &cli.Command{
		Name:      "pack",
		Usage:     "Build an ARC container from a YAML manifest",
		ArgsUsage: "<manifest.yaml> <out.arc>",
		Flags:     commonLogFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() < 2 {
				return cli.Exit("usage: reliquary pack <manifest.yaml> <out.arc>", 2)
			}
			manifestPath := cmd.Args().Get(0)
			outPath := cmd.Args().Get(1)

			data, err := os.ReadFile(manifestPath)
			if err != nil {
				return err
			}
			var m manifest
			if err := yaml.Unmarshal(data, &m); err != nil {
				return fmt.Errorf("parse %s: %w", manifestPath, err)
			}

			b, err := m.builder()
			if err != nil {
				return err
			}
			if err := b.WriteFile(outPath); err != nil {
				return err
			}
			newLog().Info("container written", "path", outPath, "objects", len(m.Objects))
			return nil
		},
	}
}

type manifest struct {
	Version       uint32 `yaml:"version"`
	EngineVersion string `yaml:"engine_version"`
	Platform      uint32 `yaml:"platform"`
	Flags         uint32 `yaml:"flags"`
	BigEndian     bool   `yaml:"big_endian"`
	SwapBytes     bool   `yaml:"swap_bytes"`

	Externals  []manifestExternal  `yaml:"externals"`
	ScriptRefs []manifestScriptRef `yaml:"script_refs"`
	Objects    []manifestObject    `yaml:"objects"`
}

type manifestExternal struct {
	GUID    string `yaml:"guid"`
	RefType uint32 `yaml:"ref_type"`
	Path    string `yaml:"path"`
}

type manifestScriptRef struct {
	FileIndex int32 `yaml:"file_index"`
	PathID    int64 `yaml:"path_id"`
}

type manifestObject struct {
	ID  int64  `yaml:"id"`
	Tag string `yaml:"tag"`

	Script *struct {
		Class     string `yaml:"class"`
		Namespace string `yaml:"namespace"`
		Assembly  string `yaml:"assembly"`
	} `yaml:"script"`
	Settings *struct {
		Version string `yaml:"version"`
		Flags   uint32 `yaml:"flags"`
	} `yaml:"settings"`
	Text *struct {
		Name    string `yaml:"name"`
		Content string `yaml:"content"`
	} `yaml:"text"`

	// File points at raw payload bytes for blob objects.
	File string `yaml:"file"`
}

func (m *manifest) builder() (*arc.Builder, error) {
	b := &arc.Builder{
		Version:       m.Version,
		EngineVersion: m.EngineVersion,
		Platform:      m.Platform,
		Flags:         m.Flags,
		BigEndian:     m.BigEndian,
		SwapBytes:     m.SwapBytes,
	}

	for _, ext := range m.Externals {
		guid, err := uuid.Parse(ext.GUID)
		if err != nil {
			return nil, fmt.Errorf("external %s: bad guid: %w", ext.Path, err)
		}
		b.AddExternal(arc.External{GUID: guid, RefType: ext.RefType, Path: ext.Path})
	}
	for _, ref := range m.ScriptRefs {
		b.AddScriptRef(ref.FileIndex, ref.PathID)
	}

	order := payloadOrder(m)
	for _, o := range m.Objects {
		tag, err := parseTag(o.Tag)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", o.ID, err)
		}
		payload, err := encodePayload(o, tag, order)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", o.ID, err)
		}
		b.AddObject(o.ID, tag, payload)
	}
	return b, nil
}

// payloadOrder mirrors arc.ResolveByteOrder for the manifest's settings, so
// packed payloads match what the loader will expect.
func payloadOrder(m *manifest) binary.ByteOrder {
	version := m.Version
	if version == 0 {
		version = arc.CurrentVersion
	}
	if version >= arc.VersionHeaderEndian {
		if m.BigEndian {
			return binary.BigEndian
		}
		return binary.LittleEndian
	}
	if m.SwapBytes {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func parseTag(s string) (arc.TypeTag, error) {
	switch s {
	case "script":
		return arc.TagScript, nil
	case "settings":
		return arc.TagSettings, nil
	case "text":
		return arc.TagText, nil
	case "blob":
		return arc.TagBlob, nil
	case "material":
		return arc.TagMaterial, nil
	case "texture":
		return arc.TagTexture, nil
	default:
		return arc.TagUnknown, fmt.Errorf("unknown tag %q", s)
	}
}

func encodePayload(o manifestObject, tag arc.TypeTag, order binary.ByteOrder) ([]byte, error) {
	w := payloadWriter{order: order}
	switch tag {
	case arc.TagScript:
		if o.Script == nil {
			return nil, fmt.Errorf("script object needs a script block")
		}
		w.putString(o.Script.Class)
		w.putString(o.Script.Namespace)
		w.putString(o.Script.Assembly)
	case arc.TagSettings:
		if o.Settings == nil {
			return nil, fmt.Errorf("settings object needs a settings block")
		}
		w.putString(o.Settings.Version)
		w.putU32(o.Settings.Flags)
	case arc.TagText:
		if o.Text == nil {
			return nil, fmt.Errorf("text object needs a text block")
		}
		w.putString(o.Text.Name)
		w.putU32(uint32(len(o.Text.Content)))
		w.buf.WriteString(o.Text.Content)
	default:
		if o.File == "" {
			return nil, fmt.Errorf("tag %q needs a payload file", o.Tag)
		}
		data, err := os.ReadFile(o.File)
		if err != nil {
			return nil, err
		}
		return data, nil
	}
	return w.buf.Bytes(), nil
}

// payloadWriter encodes payload fields in the container's resolved byte
// order, unlike the metadata region which is always little-endian.
type payloadWriter struct {
	buf   bytes.Buffer
	order binary.ByteOrder
}

func (w *payloadWriter) putU32(v uint32) {
	var b [4]byte
	w.order.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *payloadWriter) putString(s string) {
	w.putU32(uint32(len(s)))
	w.buf.WriteString(s)
}
