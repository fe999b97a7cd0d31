/*Package workflow reads the YAML description of an active-learning cycle
and runs its stages: building and scripting the MD sampling, filtering the
sampled snapshots by structural similarity, building and scripting the QM
labelling, and collecting the labelled results into the training set.

Stages are stateless between invocations. The directory layout is the only
record of progress, so any stage can be re-run or resumed by hand.*/
package workflow
