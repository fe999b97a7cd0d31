/*Package analysis computes summary statistics and distribution plots over
extended-XYZ training sets, mostly as a quick sanity check before a
potential is fit to them.*/
package analysis
