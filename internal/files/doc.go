// Package files discovers project definition files on disk.
//
// The batch command of the CLI uses it to find every project in a directory:
//
//	discovery := files.NewDiscovery(baseDir)
//	projects, err := discovery.FindProjectFiles("projects")
//	for _, p := range projects {
//	    out := files.ReportPath("reports", p, ".csv")
//	}
package files
