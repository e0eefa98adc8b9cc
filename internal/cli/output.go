package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rohmanhakim/seraphim/internal/cache"
	"github.com/rohmanhakim/seraphim/internal/catalog"
	"github.com/rohmanhakim/seraphim/internal/namecodec"
	"github.com/rohmanhakim/seraphim/internal/parser"
	"github.com/rohmanhakim/seraphim/internal/search"
)

func writeJSON(w io.Writer, v any) error {
	if r, ok := v.(search.GlobalResult); ok {
		v = newSearchView(r)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type modelHitView struct {
	Brand  namecodec.BrandIdentity `json:"brand"`
	Record parser.ModelRecord      `json:"record"`
}

type searchView struct {
	Kind   string                    `json:"kind"`
	Models []modelHitView            `json:"models,omitempty"`
	Brands []namecodec.BrandIdentity `json:"brands,omitempty"`
}

func newSearchView(r search.GlobalResult) searchView {
	view := searchView{Kind: r.Kind.String(), Brands: r.Brands}
	for _, hit := range r.Models {
		view.Models = append(view.Models, modelHitView{Brand: hit.Brand, Record: hit.Record})
	}
	return view
}

// printBrands lists brands in directory order. Model counts come from
// summaries when the brand has been loaded.
func printBrands(w io.Writer, brands []namecodec.BrandIdentity, summaries []catalog.BrandSummary) error {
	counts := make(map[string]catalog.BrandSummary, len(summaries))
	for _, s := range summaries {
		counts[s.Brand.Slug] = s
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSLUG\tMODELS")
	for _, b := range brands {
		models := "-"
		if s, ok := counts[b.Slug]; ok && s.Loaded {
			models = fmt.Sprintf("%d", s.ModelCount)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", b.DisplayName, b.Slug, models)
	}
	return tw.Flush()
}

func printRecords(w io.Writer, records []parser.ModelRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No models")
		return err
	}
	for i, group := range parser.GroupBySeries(records) {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s\n", group.Series)
		for _, r := range group.Records {
			fmt.Fprintf(w, "  %s\n", modelTitle(r))
			printVariants(w, r.Variants, "    ")
		}
	}
	return nil
}

func printModelHits(w io.Writer, hits []search.ModelHit) error {
	for _, hit := range hits {
		fmt.Fprintf(w, "%s: %s (%s)\n", hit.Brand.DisplayName, modelTitle(hit.Record), hit.Record.SeriesOrDefault())
		printVariants(w, hit.Record.Variants, "  ")
	}
	return nil
}

func printVariants(w io.Writer, variants []parser.ModelVariant, indent string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, v := range variants {
		fmt.Fprintf(tw, "%s%s\t%s\n", indent, v.ModelNumber, v.VariantName)
	}
	tw.Flush()
}

func modelTitle(r parser.ModelRecord) string {
	if r.Codename != nil {
		return fmt.Sprintf("%s [%s]", r.MainModelName, *r.Codename)
	}
	return r.MainModelName
}

func printLoadReport(out, errOut io.Writer, report catalog.LoadReport) {
	fmt.Fprintf(out, "Loaded %d/%d brands, %d models in %s\n",
		report.Loaded, report.Total, report.TotalModels, report.Duration.Round(time.Millisecond))
	for _, f := range report.Failures {
		fmt.Fprintf(errOut, "  failed %s: %v\n", f.Slug, f.Err)
	}
}

func printCacheInfo(w io.Writer, key string, info cache.Info) {
	if !info.Exists {
		fmt.Fprintf(w, "%s: not cached\n", key)
		return
	}
	state := "fresh"
	if info.Expired {
		state = "expired"
	}
	fmt.Fprintf(w, "%s: %s, age %s, expires in %s\n",
		key, state, info.Age.Round(time.Second), info.ExpiresIn.Round(time.Second))
}

// writeMetrics dumps every gathered sample as "name{labels} value".
func writeMetrics(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fmt.Fprintf(w, "%s%s %g\n", mf.GetName(), formatLabels(m.GetLabel()), sampleValue(mf.GetType(), m))
		}
	}
	return nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}

func sampleValue(t dto.MetricType, m *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_UNTYPED:
		return m.GetUntyped().GetValue()
	case dto.MetricType_SUMMARY:
		return m.GetSummary().GetSampleSum()
	case dto.MetricType_HISTOGRAM:
		return m.GetHistogram().GetSampleSum()
	default:
		return 0
	}
}
