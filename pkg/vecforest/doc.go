// Package vecforest runs text classification experiments: word2vec or
// fasttext embeddings trained on tokenized documents, averaged into document
// vectors, and classified by a random forest.
//
// Quick start:
//
//	exp, err := vecforest.New(
//	    vecforest.WithEmbedding(vecforest.FastText),
//	    vecforest.WithLabels(vecforest.Categorical),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := exp.Run(ctx, records)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("test accuracy %.4f\n", res.TestAccuracy)
//
// An Experiment holds no training state between runs and is safe for
// concurrent use.
package vecforest
