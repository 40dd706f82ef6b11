// Package checkpoint persists fetch progress so an interrupted run can
// resume from its last completed page. One checkpoint file exists per
// shortcode, written atomically after every appended page and deleted when
// the run completes.
package checkpoint
