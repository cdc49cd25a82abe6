/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


package dmap

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/datamapper/pkg/models"
	"github.com/carverauto/datamapper/pkg/wire"
)

// Client talks to one DataMapper. Each request uses its own connection.
type Client struct {
	addr    string
	timeout time.Duration
	dialer  net.Dialer
}

// NewClient creates a client for addr. timeout bounds dialing plus the
// round trip of each request; zero means only ctx bounds it.
func NewClient(addr string, timeout time.Duration) *Client {
	return &Client{
		addr:    addr,
		timeout: timeout,
		dialer:  net.Dialer{Timeout: timeout},
	}
}

// Addr returns the server address the client dials.
func (c *Client) Addr() string {
	return c.addr
}

// Do sends req and returns the server's reply. A failure status is returned
// as a reply, not an error; transport and protocol problems are errors.
func (c *Client) Do(ctx context.Context, req *wire.Request) (*wire.Reply, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.addr, err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("set deadline: %w", err)
		}
	}

	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if err := wire.WriteRequest(conn, req); err != nil {
		return nil, err
	}

	rep, err := wire.ReadReply(conn)
	if err != nil {
		return nil, fmt.Errorf("read reply from %s: %w", c.addr, err)
	}

	if rep.OK && rep.Op != req.Op {
		return nil, fmt.Errorf("%w: sent %s, got %s", errUnexpectedReplyOp, req.Op, rep.Op)
	}

	return rep, nil
}

// call is Do with failure replies turned into ErrRequestFailed.
func (c *Client) call(ctx context.Context, req *wire.Request) (*wire.Reply, error) {
	rep, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	if !rep.OK {
		return nil, fmt.Errorf("%w: %s: %s", ErrRequestFailed, req.Op, rep.Message)
	}

	return rep, nil
}

// RegisterLatest announces newly arrived data.
func (c *Client) RegisterLatest(ctx context.Context, info *models.DataSetInfo) error {
	_, err := c.call(ctx, &wire.Request{Op: wire.OpRegisterLatest, Records: []models.DataSetInfo{*info}})
	return err
}

// RegisterStatus updates the free-text status of a dataset.
func (c *Client) RegisterStatus(ctx context.Context, info *models.DataSetInfo) error {
	_, err := c.call(ctx, &wire.Request{Op: wire.OpRegisterStatus, Records: []models.DataSetInfo{*info}})
	return err
}

// RegisterDataSet updates the extent and size of a dataset.
func (c *Client) RegisterDataSet(ctx context.Context, info *models.DataSetInfo) error {
	_, err := c.call(ctx, &wire.Request{Op: wire.OpRegisterDataSet, Records: []models.DataSetInfo{*info}})
	return err
}

// RegisterFull replaces whole records.
func (c *Client) RegisterFull(ctx context.Context, infos []models.DataSetInfo) error {
	_, err := c.call(ctx, &wire.Request{Op: wire.OpRegisterFull, Records: infos})
	return err
}

// Delete removes the registrations matching (dataType, dir, hostname), each
// of which may be models.Wildcard.
func (c *Client) Delete(ctx context.Context, dataType, dir, hostname string) error {
	filter := models.DataSetInfo{DataType: dataType, Dir: dir, Hostname: hostname}

	_, err := c.call(ctx, &wire.Request{Op: wire.OpDelete, Records: []models.DataSetInfo{filter}})

	return err
}

// Wipe clears the whole registry.
func (c *Client) Wipe(ctx context.Context) error {
	return c.Delete(ctx, models.Wildcard, models.Wildcard, models.Wildcard)
}

// QuerySelected returns registrations filtered by dataType and dir, either of
// which may be empty. A non-empty relayHosts routes the query through them.
func (c *Client) QuerySelected(ctx context.Context, dataType, dir string, relayHosts []string) ([]models.DataSetInfo, error) {
	rep, err := c.call(ctx, wire.NewQuerySelected(dataType, dir, relayHosts))
	if err != nil {
		return nil, err
	}

	return rep.Records, nil
}

// QueryAll returns every registration.
func (c *Client) QueryAll(ctx context.Context, relayHosts []string) ([]models.DataSetInfo, error) {
	rep, err := c.call(ctx, &wire.Request{Op: wire.OpQueryAll, RelayHosts: relayHosts})
	if err != nil {
		return nil, err
	}

	return rep.Records, nil
}

// HostPort appends defaultPort to host when it carries no port.
func HostPort(host string, defaultPort int) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}

	return net.JoinHostPort(strings.Trim(host, "[]"), strconv.Itoa(defaultPort))
}
