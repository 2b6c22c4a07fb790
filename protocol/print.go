package protocol

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	hexLimit    = 1024
	base64Limit = 1 << 20
)

// Print emits b as the stable YAML stream described in spec.md §4.D.2,
// suitable for diffing captures across runs.
func Print(w io.Writer, b *Batch) error {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	doc.Content = append(doc.Content,
		scalar("version"), &yaml.Node{Kind: yaml.ScalarNode, Style: yaml.DoubleQuotedStyle, Value: Version},
		scalar("requests"), requestsNode(b.Requests()),
	)
	root := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{doc}}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(root)
}

// Sprint is a convenience wrapper returning the YAML stream as a
// string.
func Sprint(b *Batch) string {
	var sb strings.Builder
	_ = Print(&sb, b)
	return sb.String()
}

func requestsNode(reqs []Request) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, r := range reqs {
		seq.Content = append(seq.Content, requestNode(r))
	}
	return seq
}

func requestNode(r Request) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	n.Content = append(n.Content,
		scalar("action"), scalar(r.Action.String()),
		scalar("type"), scalar(r.Type.String()),
		scalar("id"), scalar(fmt.Sprintf("0x%016x", uint64(r.ID))),
	)
	if r.Flags != 0 {
		n.Content = append(n.Content, scalar("flags"), scalar(fmt.Sprintf("%d", r.Flags)))
	}
	if r.Desc != "" {
		n.Content = append(n.Content, scalar("desc"), scalar(r.Desc))
	}
	n.Content = append(n.Content, scalar("content"), contentNode(r))
	return n
}

func contentNode(r Request) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	put := func(k string, v *yaml.Node) { n.Content = append(n.Content, scalar(k), v) }
	c := r.Content

	switch {
	case r.Action == ActionCreate && r.Type == TypeDat:
		put("type", scalar(fmt.Sprintf("%d", c.BufferType)))
		put("size", scalar(fmt.Sprintf("%d", c.Size)))
	case r.Action == ActionCreate && r.Type == TypeTex:
		put("dims", scalar(fmt.Sprintf("%d", c.Dims)))
		put("shape", scalar(fmt.Sprintf("[%d, %d, %d]", c.Shape[0], c.Shape[1], c.Shape[2])))
		put("format", scalar(fmt.Sprintf("%d", c.Format)))
	case r.Action == ActionUpload && r.Type == TypeDat:
		put("offset", scalar(fmt.Sprintf("%d", c.Offset)))
		put("size", scalar(fmt.Sprintf("%d", c.Size)))
		put("data", binaryNode(c.Data, r.Flags))
	case r.Action == ActionUpload && r.Type == TypeTex:
		put("box_offset", scalar(fmt.Sprintf("[%d, %d, %d]", c.BoxOffset[0], c.BoxOffset[1], c.BoxOffset[2])))
		put("box_shape", scalar(fmt.Sprintf("[%d, %d, %d]", c.BoxShape[0], c.BoxShape[1], c.BoxShape[2])))
		put("size", scalar(fmt.Sprintf("%d", c.Size)))
		put("data", binaryNode(c.Data, r.Flags))
	case r.Action == ActionCreate && r.Type == TypeShader:
		if c.ShaderFormat == ShaderGLSL {
			put("format", scalar("glsl"))
			put("size", scalar(fmt.Sprintf("%d", c.Size)))
			put("code", literalBlock(c.Code))
		} else {
			put("format", scalar("spirv"))
			put("size", scalar(fmt.Sprintf("%d", c.Size)))
			put("buffer", binaryNode(c.Buffer, r.Flags))
		}
	case r.Action == ActionSet && r.Type == TypeBackground:
		put("color", scalar(fmt.Sprintf("[%d, %d, %d, %d]", c.Background[0], c.Background[1], c.Background[2], c.Background[3])))
	case r.Action == ActionSet && r.Type == TypePrimitive:
		put("topology", scalar(fmt.Sprintf("%d", c.Topology)))
	case r.Action == ActionBind:
		put("slot", scalar(fmt.Sprintf("%d", c.Slot)))
		put("id", scalar(fmt.Sprintf("0x%016x", uint64(c.BindID))))
	case r.Action == ActionRecord && r.Type == TypeRecord:
		put("variant", scalar(c.RecordVariant.String()))
		switch c.RecordVariant {
		case RecordViewport:
			put("viewport", scalar(fmt.Sprintf("[%d, %d, %d, %d]", c.Viewport.X, c.Viewport.Y, c.Viewport.W, c.Viewport.H)))
		case RecordPush:
			put("offset", scalar(fmt.Sprintf("%d", c.PushOffset)))
			put("data", binaryNode(c.PushData, r.Flags))
		case RecordDraw:
			put("graphics", scalar(fmt.Sprintf("0x%016x", uint64(c.BindID))))
			put("first_vertex", scalar(fmt.Sprintf("%d", c.FirstVertex)))
			put("vertex_count", scalar(fmt.Sprintf("%d", c.VertexCount)))
			put("first_instance", scalar(fmt.Sprintf("%d", c.FirstInstance)))
			put("instance_count", scalar(fmt.Sprintf("%d", c.InstanceCount)))
		case RecordDrawIndexed:
			put("graphics", scalar(fmt.Sprintf("0x%016x", uint64(c.BindID))))
			put("first_index", scalar(fmt.Sprintf("%d", c.FirstIndex)))
			put("vertex_offset", scalar(fmt.Sprintf("%d", c.VertexOffset)))
			put("index_count", scalar(fmt.Sprintf("%d", c.IndexCount)))
			put("first_instance", scalar(fmt.Sprintf("%d", c.FirstInstance)))
			put("instance_count", scalar(fmt.Sprintf("%d", c.InstanceCount)))
		case RecordDrawIndirect, RecordDrawIndexedIndirect:
			put("graphics", scalar(fmt.Sprintf("0x%016x", uint64(c.BindID))))
			put("indirect_dat", scalar(fmt.Sprintf("0x%016x", uint64(c.IndirectDat))))
			put("draw_count", scalar(fmt.Sprintf("%d", c.DrawCount)))
		}
	default:
		// Generic fallback: emit whichever scalar fields are non-zero,
		// covering the remaining SET/GET variants.
		if c.Slot != 0 {
			put("slot", scalar(fmt.Sprintf("%d", c.Slot)))
		}
		if c.IntParam != 0 {
			put("value", scalar(fmt.Sprintf("%d", c.IntParam)))
		}
		if c.BoolParam {
			put("enabled", scalar("true"))
		}
	}
	return n
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: s}
}

func literalBlock(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: s, Style: yaml.LiteralStyle}
}

// binaryNode renders a byte slice per spec.md §4.D.2: hex when small,
// base64 when medium, "<snip>" when oversized and the Small flag is
// set on the owning request.
func binaryNode(data []byte, flags Flags) *yaml.Node {
	n := len(data)
	switch {
	case n <= hexLimit:
		return scalar(hexBytes(data))
	case n <= base64Limit:
		return scalar(base64.RawStdEncoding.EncodeToString(data))
	case flags&Small != 0:
		return scalar("<snip>")
	default:
		return scalar(base64.RawStdEncoding.EncodeToString(data))
	}
}

func hexBytes(data []byte) string {
	var sb strings.Builder
	for i, c := range data {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", c)
	}
	return sb.String()
}
