package visibility

import (
	"strings"

	"github.com/wavemax/affiliate-program/internal/domain"
)

// ViewContext carries the caller's relationship to the data being filtered.
type ViewContext struct {
	IsSelf bool
}

// FilterFields returns a new map containing only the keys named in
// allowedFields. Dotted paths select nested attributes. Non-map input passes
// through unchanged. Filtering never adds top-level values absent from the
// source payload; a dotted path whose parent is absent still materializes an
// empty parent object on the output (long-standing behavior, kept on
// purpose and covered by tests).
func FilterFields(obj any, allowedFields []string) any {
	src, ok := obj.(map[string]any)
	if !ok {
		return obj
	}

	dst := make(map[string]any)
	for _, field := range allowedFields {
		if !strings.Contains(field, ".") {
			if val, exists := src[field]; exists {
				dst[field] = val
			}
			continue
		}

		parts := strings.Split(field, ".")
		val, exists := getPath(src, parts)
		parent := ensurePath(dst, parts[:len(parts)-1])
		if exists {
			parent[parts[len(parts)-1]] = val
		}
	}
	return dst
}

// FilterSlice maps FilterFields over a sequence. Non-map elements, nils
// included, pass through unchanged.
func FilterSlice(seq []any, allowedFields []string) []any {
	out := make([]any, len(seq))
	for i, item := range seq {
		out[i] = FilterFields(item, allowedFields)
	}
	return out
}

// FilteredData projects data to the field set permitted for the viewer's
// role and relationship. Unmodeled entity types return data unchanged.
// Arrays are handled transparently.
func FilteredData(entityType string, data any, role domain.Role, ctx ViewContext) any {
	if _, modeled := fieldMap[entityType]; !modeled {
		return data
	}

	allowed := AllowedFields(entityType, viewerKey(entityType, role, ctx))
	if seq, ok := data.([]any); ok {
		return FilterSlice(seq, allowed)
	}
	return FilterFields(data, allowed)
}

// viewerKey maps the caller role onto a visibility-map viewer context. A
// customer viewing customer data sees the expanded self set only when the
// data is their own; other customers get the restricted peer set.
func viewerKey(entityType string, role domain.Role, ctx ViewContext) string {
	switch role {
	case domain.RoleAdmin, domain.RoleAdministrator:
		return viewerAdministrator
	case domain.RoleAffiliate:
		if ctx.IsSelf {
			return viewerSelf
		}
		return viewerAffiliate
	case domain.RoleCustomer:
		if entityType == "customer" {
			if ctx.IsSelf {
				return viewerSelf
			}
			return viewerPeer
		}
		if ctx.IsSelf {
			return viewerSelf
		}
		return viewerPublic
	}
	return viewerPublic
}

func getPath(src map[string]any, parts []string) (any, bool) {
	current := src
	for i, part := range parts {
		if i == len(parts)-1 {
			val, ok := current[part]
			return val, ok
		}
		next, ok := current[part].(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}

func ensurePath(dst map[string]any, parts []string) map[string]any {
	current := dst
	for _, part := range parts {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	return current
}
