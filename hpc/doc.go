/*Package hpc writes and dispatches the batch-scheduler scripts that run the
MD and DFT stages. A machine Profile renders the #SBATCH header, the script
bodies loop over calculation directories, and large DFT batches are
partitioned over several submissions to fit scheduler job limits. Submission
itself shells out to sbatch; queueing, parallelism and retries stay with the
scheduler.*/
package hpc
