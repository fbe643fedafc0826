// Package centroid holds the mutable centroid state of a clustering run and
// reads initial centroids from an INI configuration.
//
// A configuration section looks like:
//
//	[4_cluster]
//	cluster_num = 4
//	centroid0 = 10,6,0
//	centroid1 = 10,3,0
//	centroid2 = 10,-3,0
//	centroid3 = 10,-6,0
package centroid
