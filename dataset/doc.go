/*Package dataset maintains extended-XYZ training databases. It appends
labelled configurations to a (possibly compressed) database file, sweeps
directory trees for finished VASP single points, and can watch a tree and
collect results as the calculations land.*/
package dataset
