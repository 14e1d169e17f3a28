package inspect

import (
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
)

// Fixed probe strings for the account route diagnostic.
const (
	// AccountPathFragment selects the account API routes by substring match.
	AccountPathFragment = "/api/ovh/account/"
	// EmailHistoryPathFragment identifies the email-history route within
	// the selected set.
	EmailHistoryPathFragment = "/email-history"
)

// implicitMethods are dropped from record method sets. They shadow the
// explicit registrations rather than describing distinct handlers.
var implicitMethods = map[string]struct{}{
	"HEAD":    {},
	"OPTIONS": {},
}

// Record describes one registered path and the explicit HTTP methods
// bound to it.
type Record struct {
	Endpoint string   `json:"endpoint"`
	Methods  []string `json:"methods"`
	Path     string   `json:"path"`
}

// MethodList returns the record's methods joined with commas.
func (r Record) MethodList() string {
	return strings.Join(r.Methods, ",")
}

// Collect groups the engine's per-method routes into one Record per path,
// sorted lexicographically by path. Methods within a record are sorted
// alphabetically with HEAD and OPTIONS dropped; a path registered only
// for those methods yields no record. The endpoint name is taken from
// the handler bound to the first method in sort order.
func Collect(routes gin.RoutesInfo) []Record {
	byPath := make(map[string]map[string]string)
	for _, route := range routes {
		if _, implicit := implicitMethods[route.Method]; implicit {
			continue
		}
		handlers, ok := byPath[route.Path]
		if !ok {
			handlers = make(map[string]string)
			byPath[route.Path] = handlers
		}
		handlers[route.Method] = endpointName(route.Handler)
	}

	records := make([]Record, 0, len(byPath))
	for path, handlers := range byPath {
		methods := make([]string, 0, len(handlers))
		for method := range handlers {
			methods = append(methods, method)
		}
		sort.Strings(methods)
		records = append(records, Record{
			Endpoint: handlers[methods[0]],
			Methods:  methods,
			Path:     path,
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	return records
}

// Filter returns the records whose path contains the given substring,
// preserving input order.
func Filter(records []Record, substr string) []Record {
	matched := make([]Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(r.Path, substr) {
			matched = append(matched, r)
		}
	}
	return matched
}

// ContainsPath reports whether any record's path contains the given
// substring.
func ContainsPath(records []Record, substr string) bool {
	for _, r := range records {
		if strings.Contains(r.Path, substr) {
			return true
		}
	}
	return false
}

// endpointName reduces a fully qualified handler name to its final
// identifier, trimming the -fm suffix the runtime appends to method
// values.
func endpointName(handler string) string {
	name := handler
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}
