// Package clamav provides a Go SDK for the ClamAV API antivirus scanning service.
//
// This package contains the REST client, the types shared by both transports,
// the typed errors, the Chunker used for streaming uploads and the mapping
// from transport statuses and scan responses to those errors.
//
// For gRPC support, import the sub-package github.com/DevHatRo/clamav-sdk-go/grpc.
// Both clients implement Scanner.
//
// # Quick Start
//
//	client, err := clamav.NewClient("http://localhost:6000")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	result, err := client.ScanFilePath(ctx, "/path/to/file.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Status: %s, Infected: %v\n", result.Status, result.IsInfected())
//
// # Errors
//
// Every error returned by the SDK is a *Error. Use the Is* helpers or
// errors.Is with the sentinel kinds:
//
//	if errors.Is(err, clamav.ErrFileTooLarge) {
//	    // reject the upload
//	}
//
// # Multiple files
//
// ScanMultiple returns a channel that yields one FileResult per input file as
// results complete. ScanMultipleAll blocks and returns them all.
//
//	results, err := client.ScanMultipleAll(ctx, []clamav.FileInput{
//	    {Filename: "a.txt", Data: a},
//	    {Filename: "b.txt", Data: b},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := results.Err(); err != nil {
//	    log.Printf("some files failed: %v", err)
//	}
package clamav
