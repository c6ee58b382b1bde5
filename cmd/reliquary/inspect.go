package main

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/reliquary/internal/assets"
	"github.com/samcharles93/reliquary/pkg/arc"
)

func inspectCmd() *cli.Command {
	var (
		showObjects int64
		asJSON      bool
	)

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the structure of an ARC container",
		ArgsUsage: "<file.arc>",
		Flags: append(commonLogFlags(),
			&cli.Int64Flag{
				Name:        "objects",
				Usage:       "number of objects to list (0 to skip, -1 for all)",
				Value:       20,
				Destination: &showObjects,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "emit a JSON summary instead of text",
				Destination: &asJSON,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() < 1 {
				return cli.Exit("usage: reliquary inspect <file.arc>", 2)
			}
			path := cmd.Args().First()

			c, err := arc.Open(path, arc.LoadConfig{
				Name:    path,
				Factory: assets.Factory{},
			})
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			if asJSON {
				return printJSON(os.Stdout, c)
			}
			printText(c, path, int(showObjects))
			return nil
		},
	}
}

type inspectSummary struct {
	Path          string            `json:"path"`
	FormatVersion uint32            `json:"format_version"`
	DataOffset    uint64            `json:"data_offset"`
	EngineVersion string            `json:"engine_version,omitempty"`
	Platform      uint32            `json:"platform"`
	Flags         uint32            `json:"flags"`
	BigEndian     bool              `json:"big_endian"`
	Externals     []externalSummary `json:"externals,omitempty"`
	Objects       []entrySummary    `json:"objects"`
}

type externalSummary struct {
	GUID    string `json:"guid"`
	RefType uint32 `json:"ref_type"`
	Path    string `json:"path"`
}

type entrySummary struct {
	PathID  int64  `json:"path_id"`
	Tag     uint32 `json:"tag"`
	TagName string `json:"tag_name"`
	Offset  uint64 `json:"offset"`
	Size    uint32 `json:"size"`
	Decoded bool   `json:"decoded"`
}

func printJSON(w *os.File, c *arc.Container) error {
	sum := inspectSummary{
		Path:          c.Path,
		FormatVersion: c.Header.Version,
		DataOffset:    c.Header.DataOffset,
		EngineVersion: c.Meta.EngineVersion,
		Platform:      c.Meta.Platform,
		Flags:         c.Meta.Flags,
		BigEndian:     c.Header.BigEndian,
	}
	for _, ext := range c.Meta.Externals {
		sum.Externals = append(sum.Externals, externalSummary{
			GUID:    ext.GUID.String(),
			RefType: ext.RefType,
			Path:    ext.Path,
		})
	}
	for _, e := range c.Meta.Table.Entries() {
		_, err := c.Get(e.PathID)
		sum.Objects = append(sum.Objects, entrySummary{
			PathID:  e.PathID,
			Tag:     uint32(e.Tag),
			TagName: tagName(e.Tag),
			Offset:  e.Offset,
			Size:    e.Size,
			Decoded: err == nil,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sum)
}

func printText(c *arc.Container, path string, n int) {
	fmt.Printf("File: %s\n", path)
	fmt.Printf("ARC v%d | data_offset=%d | objects=%d | externals=%d\n",
		c.Header.Version, c.Header.DataOffset, c.Meta.Table.Len(), len(c.Meta.Externals))
	if c.Meta.EngineVersion != "" {
		fmt.Printf("  engine:   %s\n", c.Meta.EngineVersion)
	}
	fmt.Printf("  platform: %d\n", c.Meta.Platform)
	fmt.Printf("  flags:    0x%x\n", c.Meta.Flags)
	fmt.Printf("  endian:   %s\n", endianName(c))

	if len(c.Meta.Externals) > 0 {
		fmt.Println()
		fmt.Println("Externals:")
		for i, ext := range c.Meta.Externals {
			fmt.Printf("  [%d] %s (guid=%s type=%d)\n", i+1, ext.Path, ext.GUID, ext.RefType)
		}
	}

	if n != 0 {
		fmt.Println()
		fmt.Println("Objects:")
		count := c.Meta.Table.Len()
		if n < 0 || n > count {
			n = count
		}
		for i := 0; i < n; i++ {
			e := c.Meta.Table.Entry(i)
			state := "decoded"
			if _, err := c.Get(e.PathID); err != nil {
				state = "skipped"
			}
			fmt.Printf("  %-10d %-10s off=%-8d len=%-8d %s\n",
				e.PathID, tagName(e.Tag), e.Offset, e.Size, state)
		}
		if n < count {
			fmt.Printf("  ... (%d more)\n", count-n)
		}
	}
}

func endianName(c *arc.Container) string {
	if c.Header.HasEndianFlag() {
		if c.Header.BigEndian {
			return "big (header)"
		}
		return "little (header)"
	}
	if c.Meta.SwapBytes {
		return "big (metadata)"
	}
	return "little (metadata)"
}

func tagName(t arc.TypeTag) string {
	switch t {
	case arc.TagScript:
		return "script"
	case arc.TagSettings:
		return "settings"
	case arc.TagText:
		return "text"
	case arc.TagBlob:
		return "blob"
	case arc.TagMaterial:
		return "material"
	case arc.TagTexture:
		return "texture"
	default:
		return fmt.Sprintf("tag(%d)", uint32(t))
	}
}
