package journal

import "github.com/auranet/aura/ids"

// NamespaceKind distinguishes an authority-scoped journal from a
// context-scoped one.
type NamespaceKind int

const (
	AuthorityNamespace NamespaceKind = iota
	ContextNamespace
)

// Namespace is either Authority(id) or Context(id). It is the scope a
// Journal and every Fact in it is pinned to.
type Namespace struct {
	Kind       NamespaceKind
	AuthorityID ids.AuthorityId
	ContextID   ids.ContextId
}

// OfAuthority builds an authority-scoped namespace.
func OfAuthority(id ids.AuthorityId) Namespace {
	return Namespace{Kind: AuthorityNamespace, AuthorityID: id}
}

// OfContext builds a context-scoped namespace.
func OfContext(id ids.ContextId) Namespace {
	return Namespace{Kind: ContextNamespace, ContextID: id}
}

// Key returns a stable string uniquely identifying the namespace,
// suitable for use as a storage-layer file or map key.
func (n Namespace) Key() string {
	switch n.Kind {
	case AuthorityNamespace:
		return "authority/" + n.AuthorityID.String()
	default:
		return "context/" + n.ContextID.String()
	}
}

// Equal reports whether two namespaces denote the same scope.
func (n Namespace) Equal(o Namespace) bool {
	if n.Kind != o.Kind {
		return false
	}
	switch n.Kind {
	case AuthorityNamespace:
		return n.AuthorityID.Equal(o.AuthorityID)
	default:
		return n.ContextID.Equal(o.ContextID)
	}
}
