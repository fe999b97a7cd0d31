/*
 * doc.go, part of mlipts
 *
 * Copyright 2025 William Davie <wdavie{at}uclDOTacDOTuk>
 *
 * mlipts is developed at the Department of Physics and Astronomy,
 * University College London.
 *
 */

/*Package vasp builds VASP single-point calculations from labelled or
MD-sampled configurations, and harvests their OUTCARs back into energies,
forces and cells. Building takes a base directory with the INCAR, KPOINTS
and POTCAR shared by every snapshot; harvesting distinguishes runs that are
missing, still going, unconverged or done, so batches can be collected,
skipped and reported without babysitting each directory.*/
package vasp
