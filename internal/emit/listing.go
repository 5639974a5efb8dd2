package emit

import (
	"io"
	"strconv"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/vk/bootgraph/internal/descriptor"
	"github.com/zclconf/go-cty/cty"
)

// Listing renders pools in the order given, followed by the stand-alone
// globals. Empty pools are skipped, as are empty cohort buckets.
func Listing(pools []*descriptor.Pool, globals ...*descriptor.Standalone) []byte {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	first := true
	next := func() {
		if !first {
			root.AppendNewline()
		}
		first = false
	}
	for _, p := range pools {
		if p.Size() == 0 {
			continue
		}
		next()
		writePool(root.AppendNewBlock("pool", []string{p.Tag().String()}).Body(), p)
	}
	for _, g := range globals {
		next()
		body := root.AppendNewBlock("global", []string{g.Name()}).Body()
		body.SetAttributeValue("declare", cty.StringVal(g.Declare()))
		body.SetAttributeValue("cohort", cty.NumberIntVal(int64(g.Cohort())))
		body.SetAttributeValue("init", cty.StringVal(g.Initializer()))
	}
	return f.Bytes()
}

// WriteListing writes the listing to w.
func WriteListing(w io.Writer, pools []*descriptor.Pool, globals ...*descriptor.Standalone) error {
	_, err := w.Write(Listing(pools, globals...))
	return err
}

func writePool(body *hclwrite.Body, p *descriptor.Pool) {
	body.SetAttributeValue("declare", cty.StringVal(p.Declare()))
	body.SetAttributeValue("size", cty.NumberIntVal(int64(p.Size())))

	var shells []string
	for i := 0; i < p.Size(); i++ {
		if d := p.At(i); d.HasPreInit() {
			shells = append(shells, d.PreInit())
		}
	}
	if len(shells) > 0 {
		body.SetAttributeValue("preinit", stringList(shells))
	}

	for k, bucket := range p.Cohorts() {
		if len(bucket) == 0 {
			continue
		}
		stmts := make([]string, len(bucket))
		for i, d := range bucket {
			stmts[i] = d.Name() + " = " + d.Initializer()
		}
		cb := body.AppendNewBlock("cohort", []string{strconv.Itoa(k)}).Body()
		cb.SetAttributeValue("init", stringList(stmts))
	}
}

func stringList(ss []string) cty.Value {
	vs := make([]cty.Value, len(ss))
	for i, s := range ss {
		vs[i] = cty.StringVal(s)
	}
	return cty.ListVal(vs)
}
