package models

// Sector is the product sector tag
type Sector string

const (
	SectorHealthtech Sector = "healthtech"
	SectorSaaS       Sector = "saas"
	SectorFintech    Sector = "fintech"
	SectorUnknown    Sector = "unknown"
)

// SectionChunk is one heading-delimited section of a pitch deck
type SectionChunk struct {
	Section string `json:"section"`
	Text    string `json:"text"`
}

// EvidenceSnippet anchors product claims to the deck section they came from
type EvidenceSnippet struct {
	Section string `json:"section"`
	Snippet string `json:"snippet"`
}

// Defensibility holds oracle-written pros and cons
type Defensibility struct {
	Pros []string `json:"pros"`
	Cons []string `json:"cons"`
}

// ProductTechSignals represents the product/technology view of a startup
type ProductTechSignals struct {
	Sector          Sector                 `json:"sector"`
	ProductSummary  string                 `json:"productSummary"`
	PolishedSummary string                 `json:"polishedSummary"`
	KeyMetrics      map[string]interface{} `json:"keyMetrics"`
	Defensibility   Defensibility          `json:"defensibility"`
	RawEvidence     []EvidenceSnippet      `json:"rawEvidence"`
}
