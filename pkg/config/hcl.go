package config

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// LoadHCL builds a document from HCL source.
//
// Attributes become values in source order. A tuple or list attribute
// becomes one value per element, which is how repeated names such as curve
// keys are written:
//
//	TORQUE {
//		key = ["0 1", "1 0"]
//	}
//
// Blocks become child nodes named after the block type; a block's first
// label, if any, is stored as its "name" value.
func LoadHCL(src []byte, filename string) (*Node, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: parse %s: %w", filename, diags)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("config: %s: unexpected body type %T", filename, file.Body)
	}

	root := NewNode(RootName)
	if err := fillFromBody(root, body); err != nil {
		return nil, fmt.Errorf("config: %s: %w", filename, err)
	}
	return root, nil
}

func fillFromBody(n *Node, body *hclsyntax.Body) error {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, a := range body.Attributes {
		attrs = append(attrs, a)
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte
	})

	for _, a := range attrs {
		val, diags := a.Expr.Value(nil)
		if diags.HasErrors() {
			return fmt.Errorf("attribute %q: %w", a.Name, diags)
		}
		texts, err := ctyToStrings(val)
		if err != nil {
			return fmt.Errorf("attribute %q: %w", a.Name, err)
		}
		for _, t := range texts {
			n.AddValue(a.Name, t)
		}
	}

	for _, blk := range body.Blocks {
		child := n.AddNode(NewNode(blk.Type))
		if len(blk.Labels) > 0 {
			child.AddValue("name", blk.Labels[0])
		}
		if err := fillFromBody(child, blk.Body); err != nil {
			return fmt.Errorf("block %q: %w", blk.Type, err)
		}
	}
	return nil
}

// ctyToStrings flattens a value into the text form the accessors parse.
func ctyToStrings(val cty.Value) ([]string, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	ty := val.Type()
	if ty.IsTupleType() || ty.IsListType() || ty.IsSetType() {
		var out []string
		it := val.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			s, err := ctyScalar(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	}

	s, err := ctyScalar(val)
	if err != nil {
		return nil, err
	}
	return []string{s}, nil
}

func ctyScalar(val cty.Value) (string, error) {
	if val.IsNull() || !val.IsKnown() {
		return "", fmt.Errorf("element is null or not known")
	}
	ty := val.Type()
	switch {
	case ty.Equals(cty.String):
		return val.AsString(), nil
	case ty.Equals(cty.Number):
		f, _ := val.AsBigFloat().Float64()
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	case ty.Equals(cty.Bool):
		return strconv.FormatBool(val.True()), nil
	}
	return "", fmt.Errorf("unsupported value type %s", val.Type().FriendlyName())
}
