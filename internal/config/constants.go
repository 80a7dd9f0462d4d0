package config

// Application constants - hardcoded values shared across the pipeline
const (
	// Application Info
	AppName    = "panelfit"
	AppVersion = "1.0.0"

	// Environment variable prefix (PANELFIT_SEED, PANELFIT_MODEL_COV_TYPE, ...)
	EnvPrefix = "PANELFIT"

	// Default CLI paths
	DefaultConfigPath = "config/params.yaml"
	DefaultOutputDir  = "outputs"

	// Output layout (relative to the output directory)
	TablesDirName  = "tables"
	FiguresDirName = "figures"
	LogsDirName    = "logs"

	// Artifact file names
	ProcessedDataFile  = "data_processed.csv"
	RegressionCSVFile  = "regression.csv"
	RegressionTexFile  = "regression.tex"
	RegressionXLSXFile = "regression.xlsx"
	SummaryFile        = "summary.txt"
	TreatEffectFigure  = "treat_effect.png"
	RunMetadataFile    = "run_metadata.json"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
