// Package pipeline runs one end-to-end estimation: load configuration,
// acquire the dataset, validate it against the panel schema, fit the
// model and write the artifacts.
//
// # Stages
//
// The run is a fixed sequence of four stages executed by a Runner:
//
//	load_config    read and validate the parameter file, start logging
//	acquire_data   generate the synthetic panel or load an external CSV
//	validate_data  schema-check the table into a typed panel
//	estimate_write fit the model and write all artifacts
//
// Stages share a State value that accumulates the run's data. The first
// failing stage aborts the run; there is no cleanup, resumption or
// retry. Every stage failure carries an apperrors category so the CLI
// can report which concern broke.
package pipeline
