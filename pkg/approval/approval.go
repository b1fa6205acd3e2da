// Package approval manages the ERC-20 allowance a maker grants the 1inch
// limit order protocol, which Fusion+ resolvers pull source tokens through.
package approval

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"

	apperrors "oneinch-agent/pkg/errors"
	"oneinch-agent/pkg/types"
)

// Limit order protocol v4 router; zkSync Era runs its own deployment
var (
	DefaultSpender = common.HexToAddress("0x111111125421cA6dc452d289314280a0f8842A65")
	ZkSyncSpender  = common.HexToAddress("0x6fd4383cB451173D5f9304F041C7BCBf27d561fF")
)

// MaxAmount is the conventional unlimited approval
var MaxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

const defaultApproveGas = uint64(100000)

const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"_owner","type":"address"},{"name":"_spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"_spender","type":"address"},{"name":"_value","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

var parsedABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		panic(err)
	}
	return parsed
}()

// ChainClient is the slice of an RPC client the approver needs.
// *ethclient.Client satisfies it.
type ChainClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
}

// Spender returns the contract that must be approved on a chain
func Spender(chainID types.NetworkID) common.Address {
	if chainID == types.NetworkZkSync {
		return ZkSyncSpender
	}
	return DefaultSpender
}

// Approver reads and sets allowances for one owner on one chain
type Approver struct {
	client  ChainClient
	chainID types.NetworkID
	owner   common.Address
	key     *ecdsa.PrivateKey
	log     logrus.FieldLogger
}

// Option configures an Approver
type Option func(*Approver)

// WithLogger sets the approver logger
func WithLogger(l logrus.FieldLogger) Option {
	return func(a *Approver) {
		if l != nil {
			a.log = l
		}
	}
}

// WithSigner lets the approver send approvals; the owner becomes the key's address
func WithSigner(key *ecdsa.PrivateKey) Option {
	return func(a *Approver) {
		if key != nil {
			a.key = key
			a.owner = crypto.PubkeyToAddress(key.PublicKey)
		}
	}
}

// New creates an approver over an existing client
func New(client ChainClient, chainID types.NetworkID, owner common.Address, opts ...Option) (*Approver, error) {
	if !chainID.Supported() {
		return nil, apperrors.Precondition("unsupported network %d", chainID)
	}
	a := &Approver{
		client:  client,
		chainID: chainID,
		owner:   owner,
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.owner == (common.Address{}) {
		return nil, apperrors.Precondition("an owner address or signing key is required")
	}
	return a, nil
}

// Dial connects to rpcURL and checks that it serves the expected chain
func Dial(ctx context.Context, rpcURL string, chainID types.NetworkID, owner common.Address, opts ...Option) (*Approver, func(), error) {
	if rpcURL == "" {
		return nil, nil, apperrors.Configuration("an RPC URL is required for chain %d", chainID)
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}

	remote, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to get chain id: %w", err)
	}
	if remote.Int64() != int64(chainID) {
		client.Close()
		return nil, nil, fmt.Errorf("RPC endpoint serves chain %s, expected %d", remote, chainID)
	}

	a, err := New(client, chainID, owner, opts...)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return a, client.Close, nil
}

// Owner is the address whose allowance is managed
func (a *Approver) Owner() common.Address {
	return a.owner
}

// Allowance returns how much of token the spender may pull from the owner
func (a *Approver) Allowance(ctx context.Context, token string) (*big.Int, error) {
	tokenAddress, err := erc20Address(token)
	if err != nil {
		return nil, err
	}

	data, err := parsedABI.Pack("allowance", a.owner, Spender(a.chainID))
	if err != nil {
		return nil, fmt.Errorf("failed to pack allowance data: %w", err)
	}

	result, err := a.client.CallContract(ctx, ethereum.CallMsg{To: &tokenAddress, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call allowance: %w", err)
	}

	out, err := parsedABI.Unpack("allowance", result)
	if err != nil {
		return nil, fmt.Errorf("failed to decode allowance: %w", err)
	}
	allowance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected allowance type %T", out[0])
	}
	return allowance, nil
}

// Approve signs and sends approve(spender, amount) on token
func (a *Approver) Approve(ctx context.Context, token string, amount *big.Int) (common.Hash, error) {
	if a.key == nil {
		return common.Hash{}, apperrors.Precondition("a private key is required to send approvals")
	}
	if amount == nil || amount.Sign() < 0 {
		return common.Hash{}, fmt.Errorf("invalid approval amount: %v", amount)
	}
	tokenAddress, err := erc20Address(token)
	if err != nil {
		return common.Hash{}, err
	}

	spender := Spender(a.chainID)
	data, err := parsedABI.Pack("approve", spender, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to pack approve data: %w", err)
	}

	nonce, err := a.client.PendingNonceAt(ctx, a.owner)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := a.client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get gas price: %w", err)
	}

	gasLimit := defaultApproveGas
	estimated, err := a.client.EstimateGas(ctx, ethereum.CallMsg{From: a.owner, To: &tokenAddress, Data: data})
	if err == nil {
		gasLimit = estimated * 120 / 100 // Add 20% buffer
	} else {
		a.log.WithError(err).Warn("gas estimation failed, using default limit")
	}

	tx := ethtypes.NewTransaction(nonce, tokenAddress, big.NewInt(0), gasLimit, gasPrice, data)
	signer := ethtypes.LatestSignerForChainID(big.NewInt(int64(a.chainID)))
	signedTx, err := ethtypes.SignTx(tx, signer, a.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := a.client.SendTransaction(ctx, signedTx); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	a.log.WithFields(logrus.Fields{
		"chain":   int(a.chainID),
		"token":   tokenAddress.Hex(),
		"spender": spender.Hex(),
		"tx":      signedTx.Hash().Hex(),
	}).Info("approval sent")
	return signedTx.Hash(), nil
}

// EnsureAllowance approves amount only when the current allowance is short.
// sent reports whether a transaction went out.
func (a *Approver) EnsureAllowance(ctx context.Context, token string, amount *big.Int) (hash common.Hash, sent bool, err error) {
	current, err := a.Allowance(ctx, token)
	if err != nil {
		return common.Hash{}, false, err
	}
	if current.Cmp(amount) >= 0 {
		return common.Hash{}, false, nil
	}
	hash, err = a.Approve(ctx, token, amount)
	if err != nil {
		return common.Hash{}, false, err
	}
	return hash, true, nil
}

func erc20Address(token string) (common.Address, error) {
	if strings.EqualFold(token, types.NativeTokenAddress) || strings.EqualFold(token, "eth") || strings.EqualFold(token, "native") {
		return common.Address{}, apperrors.Precondition("native tokens need no approval")
	}
	if !common.IsHexAddress(token) {
		return common.Address{}, fmt.Errorf("invalid token contract address: %s", token)
	}
	return common.HexToAddress(token), nil
}
