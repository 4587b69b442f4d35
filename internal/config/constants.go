package config

// Default analysis window. The panel covers complete calendar years; both
// bounds are inclusive.
const (
	DefaultStartYear = 2004
	DefaultEndYear   = 2024
)

// FRED series identifiers for the University of Michigan survey. Only the
// headline index is guaranteed to exist; the subindices are fetched
// best-effort because FRED does not always publish them separately.
const (
	SeriesConsumerSentiment    = "UMCSENT"
	SeriesConsumerExpectations = "UMCSENT1"
	SeriesCurrentConditions    = "UMCSENT2"
)

// DefaultFredBaseURL is the FRED observations API endpoint root.
const DefaultFredBaseURL = "https://api.stlouisfed.org"

// DefaultFrenchBaseURL is the Ken French Data Library FTP root at Dartmouth.
const DefaultFrenchBaseURL = "https://mba.tuck.dartmouth.edu/pages/faculty/ken.french/ftp"

// FrenchDataset describes one downloadable archive from the French library.
type FrenchDataset struct {
	Key      string
	Name     string
	ZipName  string
	Required bool
}

// FrenchDatasets lists the archives fetched by the factor step, in download
// order. Only the 3-factor file is required; momentum and the 5-factor file
// enrich the panel when available.
var FrenchDatasets = []FrenchDataset{
	{Key: "ff3", Name: "Fama-French 3 Factors", ZipName: "F-F_Research_Data_Factors_CSV.zip", Required: true},
	{Key: "mom", Name: "Momentum Factor", ZipName: "F-F_Momentum_Factor_CSV.zip", Required: false},
	{Key: "5factors", Name: "Fama-French 5 Factors", ZipName: "F-F_Research_Data_5_Factors_2x3_CSV.zip", Required: false},
}

// Standardized column names shared by the fetch steps and the merge step.
const (
	ColMichiganICS = "sentiment_michigan_ics"
	ColMichiganICE = "sentiment_michigan_ice"
	ColMichiganICC = "sentiment_michigan_icc"

	ColBullishPct     = "bullish_pct"
	ColNeutralPct     = "neutral_pct"
	ColBearishPct     = "bearish_pct"
	ColBullBearSpread = "bull_bear_spread"

	ColMktRF  = "mkt_rf"
	ColSMB    = "smb"
	ColHML    = "hml"
	ColRF     = "rf"
	ColMktRet = "mkt_ret"
	ColMom    = "mom"
	ColRMW    = "rmw"
	ColCMA    = "cma"
)

// Well-known file names under the data tree.
const (
	RawMichiganCSV  = "michigan_consumer_sentiment.csv"
	RawMichiganXLSX = "michigan_consumer_sentiment.xlsx"
	RawAAIICSV      = "aaii_sentiment.csv"
	RawAAIIXLSX     = "aaii_sentiment.xlsx"

	ProcessedMichiganCSV = "michigan_sentiment.csv"
	ProcessedAAIICSV     = "aaii_sentiment.csv"
	ProcessedFrenchCSV   = "french_factors.csv"

	FinalPanelCSV   = "analysis_panel.csv"
	FinalSummaryCSV = "summary_statistics.csv"
)

// DateLayout is the ISO date format used for the panel join key in every
// CSV the pipeline reads or writes.
const DateLayout = "2006-01-02"
