package pipeline

// Stage names a step of the post-processing pipeline.
type Stage string

const (
	StageLoad        Stage = "load"
	StageFetch       Stage = "fetch"
	StageCollation   Stage = "collation"
	StageAnalysis    Stage = "analysis"
	StagePersistence Stage = "persistence"
	StageEvaluation  Stage = "evaluation"
	StagePropagation Stage = "propagation"
	StageDensity     Stage = "density estimation"
	StageReporting   Stage = "reporting"
)

// StageError reports which stage a pipeline run failed in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return string(e.Stage) + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}
