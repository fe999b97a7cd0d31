/*Package similarity decides which MD snapshots are worth the DFT bill.
Configurations are reduced to pointwise distance distributions (Widdowson
and Kurlin, arXiv:2108.04798), compared by earth mover's distance, and
near-duplicates are dropped before the expensive stage; the AMD variant
trades discrimination for speed on large batches.*/
package similarity
