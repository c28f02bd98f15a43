// Package meta assembles the form metadata for every operation of a document.
package meta

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/siegeai/uimeta/apispec"
	"github.com/siegeai/uimeta/metrics"
	"github.com/siegeai/uimeta/naming"
	"github.com/siegeai/uimeta/params"
	"github.com/siegeai/uimeta/resolve"
	"github.com/siegeai/uimeta/uifield"
)

const defaultTag = "General"

var httpMethods = map[string]struct{}{
	"get":    {},
	"post":   {},
	"put":    {},
	"patch":  {},
	"delete": {},
}

type Metadata struct {
	Resources      []*Resource `json:"resources"`
	OperationCount int         `json:"operationCount"`
}

type Resource struct {
	Value      string       `json:"resourceValue"`
	Label      string       `json:"resourceLabel"`
	Operations []*Operation `json:"operations"`
}

type Operation struct {
	Value       string             `json:"operationValue"`
	ID          string             `json:"operationId"`
	Label       string             `json:"operationLabel"`
	Method      string             `json:"method"`
	Path        string             `json:"path"`
	Summary     string             `json:"summary"`
	Description string             `json:"description"`
	PathUI      []params.PathField `json:"pathUi"`
	QueryUI     *params.QueryUI    `json:"queryUi"`
	BodyUI      *uifield.Body      `json:"bodyUi"`
}

type options struct {
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*options)

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Generate describes every operation of doc, grouped by resource.
func Generate(doc *apispec.Document, opts ...Option) (*Metadata, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	g := &generator{
		resolver: resolve.NewResolver(doc),
		opts:     o,
		byValue:  make(map[string]*Resource),
	}
	g.builder = uifield.NewBuilder(g.resolver)

	paths := doc.Paths()
	for _, path := range paths.Keys() {
		pathItem, ok := paths.Value(path).(*apispec.Map)
		if !ok {
			o.logger.Debug("skipping path item", "path", path)
			o.metrics.ObserveSkipped(metrics.SkippedPathItem)
			continue
		}
		if err := g.addPath(path, pathItem); err != nil {
			return nil, err
		}
	}

	return g.finish(), nil
}

type generator struct {
	resolver *resolve.Resolver
	builder  *uifield.Builder
	opts     options

	resources []*Resource
	byValue   map[string]*Resource
	count     int
}

func (g *generator) addPath(path string, pathItem *apispec.Map) error {
	for _, key := range pathItem.Keys() {
		method := strings.ToLower(key)
		if _, ok := httpMethods[method]; !ok {
			continue
		}
		operation, ok := pathItem.Value(key).(*apispec.Map)
		if !ok {
			g.opts.logger.Debug("skipping operation", "path", path, "method", method)
			g.opts.metrics.ObserveSkipped(metrics.SkippedOperation)
			continue
		}

		op, err := g.buildOperation(path, method, pathItem, operation)
		if err != nil {
			return fmt.Errorf("%s %s: %w", strings.ToUpper(method), path, err)
		}

		r := g.resource(firstTag(operation))
		r.Operations = append(r.Operations, op)
		g.count++
		g.opts.metrics.ObserveOperation()
	}
	return nil
}

func (g *generator) buildOperation(path, method string, pathItem, operation *apispec.Map) (*Operation, error) {
	ps, err := params.Merge(g.resolver, pathItem, operation, func(reason string) {
		g.opts.logger.Debug("skipping parameter", "path", path, "method", method, "reason", reason)
		g.opts.metrics.ObserveSkipped(metrics.SkippedParameter)
	})
	if err != nil {
		return nil, err
	}
	queryUI, err := params.BuildQueryUI(g.resolver, ps)
	if err != nil {
		return nil, err
	}
	bodyUI, err := g.builder.BuildBody(operation)
	if err != nil {
		return nil, err
	}

	id := operation.String("operationId")
	if id == "" {
		id = method + "_" + naming.Slugify(path)
	}
	summary := naming.NormalizeSpace(operation.String("summary"))
	description := naming.NormalizeSpace(operation.String("description"))
	if description == "" {
		description = summary
	}

	return &Operation{
		Value:       id,
		ID:          id,
		Label:       naming.OperationLabel(id),
		Method:      strings.ToUpper(method),
		Path:        path,
		Summary:     summary,
		Description: description,
		PathUI:      params.BuildPathUI(ps),
		QueryUI:     queryUI,
		BodyUI:      bodyUI,
	}, nil
}

func firstTag(operation *apispec.Map) string {
	tags := operation.List("tags")
	if len(tags) == 0 || tags[0] == nil {
		return defaultTag
	}
	return apispec.Stringify(tags[0])
}

// resource returns the resource for tag, creating it on first use.
func (g *generator) resource(tag string) *Resource {
	value := naming.Slugify(tag)
	if r, ok := g.byValue[value]; ok {
		return r
	}
	r := &Resource{
		Value:      value,
		Label:      tag,
		Operations: make([]*Operation, 0),
	}
	g.byValue[value] = r
	g.resources = append(g.resources, r)
	return r
}

func (g *generator) finish() *Metadata {
	sort.SliceStable(g.resources, func(i, j int) bool {
		return g.resources[i].Label < g.resources[j].Label
	})
	for _, r := range g.resources {
		sort.SliceStable(r.Operations, func(i, j int) bool {
			return r.Operations[i].Label < r.Operations[j].Label
		})
	}
	g.opts.metrics.ObserveResources(len(g.resources))

	resources := g.resources
	if resources == nil {
		resources = make([]*Resource, 0)
	}
	return &Metadata{Resources: resources, OperationCount: g.count}
}
