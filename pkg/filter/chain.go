package filter

// Default is the standard ingestion filter chain: Basic, then Suffix,
// then the glob-exclude enrichment, short-circuiting on the first
// rejection.
var Default Filter = And(Basic, Suffix, GlobExclude)
