package chain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"golang.org/x/exp/maps"
)

// Account represents the state of a single account tracked by a WorldState: its balance, nonce, code, and storage.
type Account struct {
	// Balance describes the account balance in wei.
	Balance *uint256.Int

	// Nonce describes the account nonce. Contract accounts start at one per EIP-161.
	Nonce uint64

	// Code describes the runtime bytecode deployed at the account, if any.
	Code []byte

	// Storage maps 256-bit storage keys to their values. Unset keys read as the zero value.
	Storage map[common.Hash]common.Hash
}

// newAccount creates an empty account with initialized fields.
func newAccount() *Account {
	return &Account{
		Balance: uint256.NewInt(0),
		Storage: make(map[common.Hash]common.Hash),
	}
}

// Copy returns a deep copy of the account, sharing no mutable state with the original.
func (a *Account) Copy() *Account {
	return &Account{
		Balance: new(uint256.Int).Set(a.Balance),
		Nonce:   a.Nonce,
		Code:    append([]byte(nil), a.Code...),
		Storage: maps.Clone(a.Storage),
	}
}

// WorldState is the engine's view onto the VM's mutable state: account balances, nonces, code, storage slots, and
// the block context fields cheat codes may spoof. It is exclusively owned and mutated by the TestChain on behalf of
// cheat codes and the embedding interpreter.
type WorldState struct {
	// accounts maps addresses to their account state. Addresses without an entry are treated as empty accounts.
	accounts map[common.Address]*Account

	// blockContext describes the block environment values exposed to executing contracts.
	blockContext *BlockContext
}

// NewWorldState creates an empty world state with a default block context.
func NewWorldState() *WorldState {
	return &WorldState{
		accounts:     make(map[common.Address]*Account),
		blockContext: newBlockContext(),
	}
}

// BlockContext returns the block environment tracked by this state.
func (w *WorldState) BlockContext() *BlockContext {
	return w.blockContext
}

// account obtains the account for the given address, creating an empty entry if one does not exist yet.
func (w *WorldState) account(address common.Address) *Account {
	account, ok := w.accounts[address]
	if !ok {
		account = newAccount()
		w.accounts[address] = account
	}
	return account
}

// Exists indicates whether any state has been recorded for the given address.
func (w *WorldState) Exists(address common.Address) bool {
	_, ok := w.accounts[address]
	return ok
}

// IsInitialized indicates whether the account at the given address is non-empty per EIP-161, meaning it has a
// non-zero balance, a non-zero nonce, or deployed code. Untouched and empty accounts report false.
func (w *WorldState) IsInitialized(address common.Address) bool {
	account, ok := w.accounts[address]
	if !ok {
		return false
	}
	return !account.Balance.IsZero() || account.Nonce != 0 || len(account.Code) > 0
}

// GetBalance returns the balance of the account at the given address.
func (w *WorldState) GetBalance(address common.Address) *uint256.Int {
	if account, ok := w.accounts[address]; ok {
		return new(uint256.Int).Set(account.Balance)
	}
	return uint256.NewInt(0)
}

// SetBalance replaces the balance of the account at the given address.
func (w *WorldState) SetBalance(address common.Address, balance *uint256.Int) {
	w.account(address).Balance = new(uint256.Int).Set(balance)
}

// AddBalance credits the account at the given address.
func (w *WorldState) AddBalance(address common.Address, amount *uint256.Int) {
	account := w.account(address)
	account.Balance = new(uint256.Int).Add(account.Balance, amount)
}

// SubBalance debits the account at the given address. Balances saturate at zero rather than underflowing, as the
// interpreter is expected to have validated the transfer beforehand.
func (w *WorldState) SubBalance(address common.Address, amount *uint256.Int) {
	account := w.account(address)
	if account.Balance.Lt(amount) {
		account.Balance = uint256.NewInt(0)
		return
	}
	account.Balance = new(uint256.Int).Sub(account.Balance, amount)
}

// GetNonce returns the nonce of the account at the given address.
func (w *WorldState) GetNonce(address common.Address) uint64 {
	if account, ok := w.accounts[address]; ok {
		return account.Nonce
	}
	return 0
}

// SetNonce replaces the nonce of the account at the given address.
func (w *WorldState) SetNonce(address common.Address, nonce uint64) {
	w.account(address).Nonce = nonce
}

// GetCode returns the runtime code deployed at the given address, or nil if the account has no code.
func (w *WorldState) GetCode(address common.Address) []byte {
	if account, ok := w.accounts[address]; ok {
		return account.Code
	}
	return nil
}

// SetCode replaces the runtime code deployed at the given address.
func (w *WorldState) SetCode(address common.Address, code []byte) {
	w.account(address).Code = append([]byte(nil), code...)
}

// GetState returns the value of the given storage slot of the account at the given address.
func (w *WorldState) GetState(address common.Address, slot common.Hash) common.Hash {
	if account, ok := w.accounts[address]; ok {
		return account.Storage[slot]
	}
	return common.Hash{}
}

// SetState replaces the value of the given storage slot of the account at the given address.
func (w *WorldState) SetState(address common.Address, slot common.Hash, value common.Hash) {
	w.account(address).Storage[slot] = value
}

// CreateAccount deploys a new contract account on behalf of the given creator. The new account's address is derived
// from the creator address and nonce the same way the interpreter derives it, the creator's nonce is incremented,
// and the new account starts with a nonce of one per EIP-161. Nonce queries made through cheat codes observe the
// increment immediately because they share this path.
// Returns the address of the newly created account.
func (w *WorldState) CreateAccount(creator common.Address) common.Address {
	creatorAccount := w.account(creator)
	address := crypto.CreateAddress(creator, creatorAccount.Nonce)
	creatorAccount.Nonce++

	created := w.account(address)
	created.Nonce = 1
	return address
}

// Copy produces a deep copy of the world state, including the block context. The copy shares no mutable state with
// the original, so later mutation of either never aliases the other. Snapshots rely on this guarantee.
func (w *WorldState) Copy() *WorldState {
	accounts := make(map[common.Address]*Account, len(w.accounts))
	for address, account := range w.accounts {
		accounts[address] = account.Copy()
	}
	return &WorldState{
		accounts:     accounts,
		blockContext: w.blockContext.Copy(),
	}
}
