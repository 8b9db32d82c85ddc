package store

// ModelSummary is the list/graph projection of a model row. Nullable
// columns are defaulted at read time: materialization to "view",
// resource_type to "model", string fields to "".
type ModelSummary struct {
	UniqueID        string   `json:"unique_id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	Schema          string   `json:"schema"`
	PackageName     string   `json:"package_name"`
	Materialization string   `json:"materialization"`
	ResourceType    string   `json:"resource_type"`
	Tags            []string `json:"tags"`
}

// Facets are the distinct-value lists driving filter UIs, each sorted and
// free of empty values.
type Facets struct {
	Tags             []string `json:"tags"`
	Schemas          []string `json:"schemas"`
	Packages         []string `json:"packages"`
	Materializations []string `json:"materializations"`
}

// ModelPage is one page of the model listing plus the global facets.
type ModelPage struct {
	Total  int            `json:"total"`
	Items  []ModelSummary `json:"items"`
	Facets Facets         `json:"facets"`
}

// ColumnDetail is one declared column of a model.
type ColumnDetail struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ModelDetail is the full point-lookup projection of a model row with its
// columns, tags, meta, and config deserialized from their stored encoding.
type ModelDetail struct {
	UniqueID        string         `json:"unique_id"`
	Name            string         `json:"name"`
	Schema          string         `json:"schema"`
	Database        string         `json:"database"`
	Path            string         `json:"path"`
	PackageName     string         `json:"package_name"`
	Alias           string         `json:"alias,omitempty"`
	Materialization string         `json:"materialization"`
	ResourceType    string         `json:"resource_type"`
	Description     string         `json:"description"`
	Tags            []string       `json:"tags"`
	Meta            map[string]any `json:"meta"`
	Config          map[string]any `json:"config"`
	Columns         []ColumnDetail `json:"columns"`
}

// GraphNode is a model rendered for graph consumers.
type GraphNode struct {
	ID              string   `json:"id"`
	Label           string   `json:"label"`
	Schema          string   `json:"schema"`
	PackageName     string   `json:"package_name"`
	Materialization string   `json:"materialization"`
	ResourceType    string   `json:"resource_type"`
	Tags            []string `json:"tags"`
}

// GraphEdge is a directed dependency: source depends on target.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Lineage is the bounded-depth neighborhood of one model: the full
// undirected subgraph for the canvas, plus direction-labeled immediate
// neighbors for the detail lists.
type Lineage struct {
	Nodes      []GraphNode    `json:"nodes"`
	Edges      []GraphEdge    `json:"edges"`
	Upstream   []ModelSummary `json:"upstream"`
	Downstream []ModelSummary `json:"downstream"`
}

// Graph is the unfiltered full-project export.
type Graph struct {
	Nodes  []GraphNode    `json:"nodes"`
	Edges  []GraphEdge    `json:"edges"`
	Models []ModelSummary `json:"models"`
	Total  int            `json:"total"`
}

// SearchResult is one matching search document.
type SearchResult struct {
	DocType       string `json:"doc_type"`
	DocID         string `json:"doc_id"`
	ModelUniqueID string `json:"model_unique_id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
}

// ModelRef is the minimal model reference used by the navigation tree.
type ModelRef struct {
	UniqueID string `json:"unique_id"`
	Name     string `json:"name"`
}

// SchemaGroup groups models under one schema.
type SchemaGroup struct {
	Name   string     `json:"name"`
	Models []ModelRef `json:"models"`
}

// DatabaseGroup groups schemas under one database.
type DatabaseGroup struct {
	Name    string        `json:"name"`
	Schemas []SchemaGroup `json:"schemas"`
}
