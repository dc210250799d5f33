// Package grpc provides a gRPC client for the ClamAV API antivirus scanning service.
//
// If you only need REST, import the root package github.com/DevHatRo/clamav-sdk-go instead.
//
// # Quick Start
//
//	client, err := grpc.NewClient("localhost:9000")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	result, err := client.ScanFile(ctx, data, "test.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Status: %s\n", result.Status)
//
// # Streaming
//
// ScanStream and ScanStreamReader send the payload in frames of WithChunkSize
// bytes over a client-streaming call. ScanMultiple sends many payloads over a
// single bidirectional stream; each payload is tagged with a correlation key
// and results are matched back to it as they arrive, in any order.
//
//	results, err := client.ScanMultiple(ctx, files)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for r := range results {
//	    if r.Err != nil {
//	        log.Printf("%s: %v", r.Filename, r.Err)
//	        continue
//	    }
//	    fmt.Printf("%s: %s\n", r.Filename, r.Result.Status)
//	}
package grpc
