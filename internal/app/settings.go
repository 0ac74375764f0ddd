package app

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"refremote/internal/daemon"
	"refremote/internal/remote"
	"refremote/internal/settings"
)

// StoreParams configures a settings update.
type StoreParams struct {
	Values  settings.Values
	Timeout time.Duration
}

// StoreResult reports what the daemon changed.
type StoreResult = daemon.StoreReply

// Settings fetches the advanced settings as the daemon currently holds them.
func (a *App) Settings(ctx context.Context, timeout time.Duration) (settings.Values, error) {
	var values settings.Values
	err := a.withClient(ctx, timeout, func(ctx context.Context, client daemon.ControlClient) error {
		resp, err := client.GetSettings(ctx, &emptypb.Empty{})
		if err != nil {
			return fmt.Errorf("daemon settings RPC failed: %w", err)
		}
		values = daemon.DecodeValues(resp)
		return nil
	})
	return values, err
}

// StoreSettings validates locally, then asks the daemon to persist and apply the values.
// An invalid port never reaches the daemon.
func (a *App) StoreSettings(ctx context.Context, params StoreParams) (StoreResult, error) {
	var result StoreResult
	if _, err := remote.ValidatePort(params.Values.RemoteServerPort); err != nil {
		return result, err
	}

	req, err := daemon.EncodeValues(params.Values)
	if err != nil {
		return result, fmt.Errorf("encode settings: %w", err)
	}
	err = a.withClient(ctx, params.Timeout, func(ctx context.Context, client daemon.ControlClient) error {
		resp, err := client.StoreSettings(ctx, req)
		if err != nil {
			if st, ok := status.FromError(err); ok && st.Code() == codes.InvalidArgument {
				return fmt.Errorf("%w: %s", remote.ErrInvalidPort, st.Message())
			}
			return fmt.Errorf("daemon store RPC failed: %w", err)
		}
		result = daemon.DecodeStoreReply(resp)
		return nil
	})
	return result, err
}
