package domain

// SearchHit lists the matching chunks of one document.
type SearchHit struct {
	// DocumentID identifies the matching document.
	DocumentID string `json:"doc_id"`

	// ChunkIndices are the matching chunk indices in ascending order.
	ChunkIndices []int `json:"chunk_indices"`
}

// SearchResults is an ordered search response, sorted by DocumentID.
type SearchResults []SearchHit

// AsMap returns the docId to chunk indices mapping returned by the search tool.
func (r SearchResults) AsMap() map[string][]int {
	m := make(map[string][]int, len(r))
	for _, hit := range r {
		m[hit.DocumentID] = hit.ChunkIndices
	}
	return m
}

// TotalChunks returns the number of matching chunks across all documents.
func (r SearchResults) TotalChunks() int {
	n := 0
	for _, hit := range r {
		n += len(hit.ChunkIndices)
	}
	return n
}
