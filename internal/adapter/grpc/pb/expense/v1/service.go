package expensev1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "expense.v1.LedgerService"

const (
	LedgerService_GetAccount_FullMethodName  = "/expense.v1.LedgerService/GetAccount"
	LedgerService_ApplyEntry_FullMethodName  = "/expense.v1.LedgerService/ApplyEntry"
	LedgerService_AmendEntry_FullMethodName  = "/expense.v1.LedgerService/AmendEntry"
	LedgerService_RemoveEntry_FullMethodName = "/expense.v1.LedgerService/RemoveEntry"
	LedgerService_ListEntries_FullMethodName = "/expense.v1.LedgerService/ListEntries"
)

// LedgerServiceServer is the server API for LedgerService.
type LedgerServiceServer interface {
	GetAccount(context.Context, *GetAccountRequest) (*GetAccountResponse, error)
	ApplyEntry(context.Context, *ApplyEntryRequest) (*EntryResponse, error)
	AmendEntry(context.Context, *AmendEntryRequest) (*EntryResponse, error)
	RemoveEntry(context.Context, *RemoveEntryRequest) (*RemoveEntryResponse, error)
	ListEntries(context.Context, *ListEntriesRequest) (*ListEntriesResponse, error)
}

// UnimplementedLedgerServiceServer can be embedded to have forward compatible
// implementations.
type UnimplementedLedgerServiceServer struct{}

func (UnimplementedLedgerServiceServer) GetAccount(context.Context, *GetAccountRequest) (*GetAccountResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAccount not implemented")
}

func (UnimplementedLedgerServiceServer) ApplyEntry(context.Context, *ApplyEntryRequest) (*EntryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ApplyEntry not implemented")
}

func (UnimplementedLedgerServiceServer) AmendEntry(context.Context, *AmendEntryRequest) (*EntryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AmendEntry not implemented")
}

func (UnimplementedLedgerServiceServer) RemoveEntry(context.Context, *RemoveEntryRequest) (*RemoveEntryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RemoveEntry not implemented")
}

func (UnimplementedLedgerServiceServer) ListEntries(context.Context, *ListEntriesRequest) (*ListEntriesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListEntries not implemented")
}

// RegisterLedgerServiceServer registers srv on s.
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerService_ServiceDesc, srv)
}

// NewResponse returns an empty response message for a LedgerService method, or nil for
// an unknown method. The idempotency interceptor decodes replayed responses into it.
func NewResponse(fullMethod string) any {
	switch fullMethod {
	case LedgerService_GetAccount_FullMethodName:
		return new(GetAccountResponse)
	case LedgerService_ApplyEntry_FullMethodName, LedgerService_AmendEntry_FullMethodName:
		return new(EntryResponse)
	case LedgerService_RemoveEntry_FullMethodName:
		return new(RemoveEntryResponse)
	case LedgerService_ListEntries_FullMethodName:
		return new(ListEntriesResponse)
	}
	return nil
}

// IsReadOnly reports whether fullMethod leaves the ledger unchanged.
func IsReadOnly(fullMethod string) bool {
	switch fullMethod {
	case LedgerService_GetAccount_FullMethodName, LedgerService_ListEntries_FullMethodName:
		return true
	}
	return false
}

func unaryHandler[Req any, Resp any](
	fullMethod string,
	call func(LedgerServiceServer, context.Context, *Req) (*Resp, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LedgerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LedgerServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// LedgerService_ServiceDesc is the grpc.ServiceDesc for LedgerService.
var LedgerService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetAccount",
			Handler:    unaryHandler(LedgerService_GetAccount_FullMethodName, LedgerServiceServer.GetAccount),
		},
		{
			MethodName: "ApplyEntry",
			Handler:    unaryHandler(LedgerService_ApplyEntry_FullMethodName, LedgerServiceServer.ApplyEntry),
		},
		{
			MethodName: "AmendEntry",
			Handler:    unaryHandler(LedgerService_AmendEntry_FullMethodName, LedgerServiceServer.AmendEntry),
		},
		{
			MethodName: "RemoveEntry",
			Handler:    unaryHandler(LedgerService_RemoveEntry_FullMethodName, LedgerServiceServer.RemoveEntry),
		},
		{
			MethodName: "ListEntries",
			Handler:    unaryHandler(LedgerService_ListEntries_FullMethodName, LedgerServiceServer.ListEntries),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "expense/v1/ledger.proto",
}

// LedgerServiceClient is the client API for LedgerService.
type LedgerServiceClient interface {
	GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*GetAccountResponse, error)
	ApplyEntry(ctx context.Context, in *ApplyEntryRequest, opts ...grpc.CallOption) (*EntryResponse, error)
	AmendEntry(ctx context.Context, in *AmendEntryRequest, opts ...grpc.CallOption) (*EntryResponse, error)
	RemoveEntry(ctx context.Context, in *RemoveEntryRequest, opts ...grpc.CallOption) (*RemoveEntryResponse, error)
	ListEntries(ctx context.Context, in *ListEntriesRequest, opts ...grpc.CallOption) (*ListEntriesResponse, error)
}

type ledgerServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewLedgerServiceClient returns a client that always speaks the JSON codec.
func NewLedgerServiceClient(cc grpc.ClientConnInterface) LedgerServiceClient {
	return &ledgerServiceClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerServiceClient) GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*GetAccountResponse, error) {
	return invoke[GetAccountResponse](ctx, c.cc, LedgerService_GetAccount_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) ApplyEntry(ctx context.Context, in *ApplyEntryRequest, opts ...grpc.CallOption) (*EntryResponse, error) {
	return invoke[EntryResponse](ctx, c.cc, LedgerService_ApplyEntry_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) AmendEntry(ctx context.Context, in *AmendEntryRequest, opts ...grpc.CallOption) (*EntryResponse, error) {
	return invoke[EntryResponse](ctx, c.cc, LedgerService_AmendEntry_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) RemoveEntry(ctx context.Context, in *RemoveEntryRequest, opts ...grpc.CallOption) (*RemoveEntryResponse, error) {
	return invoke[RemoveEntryResponse](ctx, c.cc, LedgerService_RemoveEntry_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) ListEntries(ctx context.Context, in *ListEntriesRequest, opts ...grpc.CallOption) (*ListEntriesResponse, error) {
	return invoke[ListEntriesResponse](ctx, c.cc, LedgerService_ListEntries_FullMethodName, in, opts)
}
