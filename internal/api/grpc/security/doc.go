// Package security implements the gRPC transport of the alarm coordinator.
//
// The service is declared by hand over protobuf well-known messages
// (structpb.Struct, emptypb.Empty, wrapperspb.BytesValue), so no generated
// code is needed on either side. Server adapts requests to a guarded
// security.Service and maps failures to gRPC status codes.
package security
