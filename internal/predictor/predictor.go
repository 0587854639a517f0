package predictor

import (
	"context"

	"gamestats/internal/dataset"
	gerr "gamestats/internal/errors"
	"gamestats/internal/features"
	"gamestats/internal/logging"
	"gamestats/internal/model"
	"go.uber.org/zap"
)

// Run executes the award predictor: load and join, encode, split, scale,
// search k, refit, evaluate and predict the literal game.
func Run(ctx context.Context, opts Options, logger *zap.Logger) (*Report, error) {
	logger = logging.WithComponent(logging.OrNop(logger), "awards")

	ds, err := dataset.Build(ctx, dataset.Options{
		DataDir:         opts.DataDir,
		Pattern:         opts.Pattern,
		DropColumns:     opts.DropColumns,
		AwardsPath:      opts.AwardsPath,
		Awards:          opts.Awards,
		TitleColumn:     opts.TitleColumn,
		TargetColumn:    opts.TargetColumn,
		DropTrailingRow: opts.DropTrailingRow,
		Parallelism:     opts.Parallelism,
	}, logger)
	if err != nil {
		return nil, err
	}

	enc := features.NewTableEncoder(opts.TitleColumn, opts.TargetColumn, opts.Categorical)
	data, err := enc.FitTransform(ds.Table)
	if err != nil {
		return nil, err
	}
	logging.WithStage(logger, "encode").Debug("encoded features",
		zap.Int("passthrough", len(enc.Passthrough)),
		zap.Int("indicators", enc.OneHot.Width()),
	)

	trainIdx, testIdx, err := model.TrainTestSplit(ds.Table.Len(), opts.TestSize, opts.Seed)
	if err != nil {
		return nil, err
	}
	xTrain, yTrain := model.Rows(data.X, trainIdx), model.Pick(data.Y, trainIdx)
	xTest, yTest := model.Rows(data.X, testIdx), model.Pick(data.Y, testIdx)

	var scaler features.StandardScaler
	xTrainScaled, err := scaler.FitTransform(xTrain)
	if err != nil {
		return nil, err
	}
	xTestScaled, err := scaler.Transform(xTest)
	if err != nil {
		return nil, err
	}

	search, err := model.GridSearch(ctx, xTrainScaled, yTrain, opts.Search, logger)
	if err != nil {
		return nil, err
	}
	knn := model.NewKNNRegressor(search.BestK)
	if err := knn.Fit(xTrainScaled, yTrain); err != nil {
		return nil, err
	}

	yPred, err := knn.Predict(xTestScaled)
	if err != nil {
		return nil, err
	}
	metrics, err := model.Evaluate(yTest, yPred)
	if err != nil {
		return nil, err
	}

	prediction, unmatched, err := predictLiteral(enc, &scaler, knn, opts)
	if err != nil {
		return nil, err
	}
	if len(unmatched) > 0 {
		logging.WithStage(logger, "predict").Warn("literal values not seen in training; their indicators are all zero",
			zap.Strings("columns", unmatched))
	}

	logger.Info("prediction complete",
		zap.Int("rows", ds.Table.Len()),
		zap.Int("features", enc.Width()),
		zap.Int("best_k", search.BestK),
		zap.Float64("mse", metrics.MSE),
		zap.Float64("prediction", prediction),
	)
	return &Report{
		Files:       ds.Files,
		Rows:        ds.Table.Len(),
		RowsAwarded: ds.Matched,
		Features:    enc.Width(),
		TrainRows:   len(trainIdx),
		TestRows:    len(testIdx),
		Search:      search,
		Metrics:     metrics,
		NewGame:     opts.NewGame,
		Prediction:  prediction,
		Unmatched:   unmatched,
	}, nil
}

func predictLiteral(enc *features.TableEncoder, scaler *features.StandardScaler, knn *model.KNNRegressor, opts Options) (float64, []string, error) {
	row, unmatched, err := enc.Literal(opts.NewGame)
	if err != nil {
		return 0, nil, err
	}
	if len(unmatched) > 0 && opts.Unknown == UnknownError {
		return 0, nil, gerr.NewEncodingMismatch(unmatched)
	}
	scaled, err := scaler.TransformRow(row)
	if err != nil {
		return 0, nil, err
	}
	p, err := knn.PredictRow(scaled)
	if err != nil {
		return 0, nil, err
	}
	return p, unmatched, nil
}
