package dnt

import (
	"sort"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/algem/liquid-staking-service/internal/ledger"
	"github.com/algem/liquid-staking-service/internal/ledger/distributor"
)

// Distributor is the allocation ledger kept in step with every balance change.
type Distributor interface {
	ValidateUpdate(caller, user common.Address, utility, dnt string, amount sdkmath.Int, dir distributor.Direction) error
	UpdateDistribution(caller, user common.Address, utility, dnt string, amount sdkmath.Int, dir distributor.Direction) error
	ValidateTransfer(caller, from, to common.Address, dnt string, amount sdkmath.Int) error
	TransferDistribution(caller, from, to common.Address, dnt string, amount sdkmath.Int) error
}

// Checkpoint is a value as it stood when snapshot ID was taken. It is
// written on the first change after that snapshot, so an untouched account
// costs nothing per snapshot.
type Checkpoint struct {
	ID    uint64      `json:"id"`
	Value sdkmath.Int `json:"value"`
}

// Token is the receipt token ledger. Only the owner mints and burns.
type Token struct {
	name    string
	address common.Address
	admin   common.Address
	owner   common.Address
	paused  bool

	totalSupply sdkmath.Int
	balances    map[common.Address]sdkmath.Int

	snapshotID         uint64
	balanceCheckpoints map[common.Address][]Checkpoint
	supplyCheckpoints  []Checkpoint

	distr  Distributor
	events *ledger.EventLog
}

func New(name string, address, admin common.Address, distr Distributor) (*Token, error) {
	if name == "" {
		return nil, errorsmod.Wrap(ledger.ErrInvalidAmount, "empty token name")
	}
	if err := ledger.ValidateAddress(address); err != nil {
		return nil, err
	}
	if err := ledger.ValidateAddress(admin); err != nil {
		return nil, err
	}
	return &Token{
		name:        name,
		address:     address,
		admin:       admin,
		owner:       admin,
		totalSupply: sdkmath.ZeroInt(),
		balances:    make(map[common.Address]sdkmath.Int),
		distr:       distr,

		balanceCheckpoints: make(map[common.Address][]Checkpoint),
	}, nil
}

// SetEventLog makes transfers visible in log.
func (t *Token) SetEventLog(log *ledger.EventLog) {
	t.events = log
}

func (t *Token) Name() string { return t.name }
func (t *Token) Address() common.Address { return t.address }
func (t *Token) Owner() common.Address { return t.owner }
func (t *Token) Admin() common.Address { return t.admin }
func (t *Token) Paused() bool { return t.paused }
func (t *Token) TotalSupply() sdkmath.Int { return t.totalSupply }

func (t *Token) BalanceOf(addr common.Address) sdkmath.Int {
	return ledger.OrZero(t.balances[addr])
}

func (t *Token) TransferOwnership(caller, newOwner common.Address) error {
	if caller != t.admin && caller != t.owner {
		return errorsmod.Wrapf(ledger.ErrUnauthorized, "%s cannot transfer ownership", caller.Hex())
	}
	if err := ledger.ValidateAddress(newOwner); err != nil {
		return err
	}
	t.owner = newOwner
	return nil
}

func (t *Token) Pause(caller common.Address) error {
	if caller != t.admin {
		return errorsmod.Wrapf(ledger.ErrUnauthorized, "%s is not the token admin", caller.Hex())
	}
	t.paused = true
	return nil
}

func (t *Token) Unpause(caller common.Address) error {
	if caller != t.admin {
		return errorsmod.Wrapf(ledger.ErrUnauthorized, "%s is not the token admin", caller.Hex())
	}
	t.paused = false
	return nil
}

func (t *Token) checkOwner(caller common.Address) error {
	if caller != t.owner {
		return errorsmod.Wrapf(ledger.ErrUnauthorized, "%s is not the token owner", caller.Hex())
	}
	return nil
}

func (t *Token) checkPaused() error {
	if t.paused {
		return errorsmod.Wrapf(ledger.ErrPaused, "token %s is paused", t.name)
	}
	return nil
}

// ValidateMint reports the error Mint would return without changing state.
func (t *Token) ValidateMint(caller, to common.Address, utility string, amount sdkmath.Int) error {
	if err := t.checkOwner(caller); err != nil {
		return err
	}
	if err := t.checkPaused(); err != nil {
		return err
	}
	return t.distr.ValidateUpdate(t.address, to, utility, t.name, amount, distributor.Increase)
}

// Mint credits amount to the utility allocation of to.
func (t *Token) Mint(caller, to common.Address, utility string, amount sdkmath.Int) error {
	if err := t.ValidateMint(caller, to, utility, amount); err != nil {
		return err
	}
	if err := t.distr.UpdateDistribution(t.address, to, utility, t.name, amount, distributor.Increase); err != nil {
		return err
	}
	t.setBalance(to, t.BalanceOf(to).Add(amount))
	t.setSupply(t.totalSupply.Add(amount))
	return nil
}

// ValidateBurn reports the error Burn would return without changing state.
func (t *Token) ValidateBurn(caller, from common.Address, utility string, amount sdkmath.Int) error {
	if err := t.checkOwner(caller); err != nil {
		return err
	}
	if err := t.checkPaused(); err != nil {
		return err
	}
	if err := ledger.ValidateAmount(amount); err != nil {
		return err
	}
	if t.BalanceOf(from).LT(amount) {
		return errorsmod.Wrapf(ledger.ErrInsufficientBalance,
			"%s holds %s %s, needs %s", from.Hex(), t.BalanceOf(from), t.name, amount)
	}
	return t.distr.ValidateUpdate(t.address, from, utility, t.name, amount, distributor.Decrease)
}

// Burn removes amount from the utility allocation of from.
func (t *Token) Burn(caller, from common.Address, utility string, amount sdkmath.Int) error {
	if err := t.ValidateBurn(caller, from, utility, amount); err != nil {
		return err
	}
	if err := t.distr.UpdateDistribution(t.address, from, utility, t.name, amount, distributor.Decrease); err != nil {
		return err
	}
	t.setBalance(from, t.BalanceOf(from).Sub(amount))
	t.setSupply(t.totalSupply.Sub(amount))
	return nil
}

// Transfer moves amount from the caller to to. The allocation follows the
// tokens in the sender's utility proportions.
func (t *Token) Transfer(from, to common.Address, amount sdkmath.Int) error {
	if err := t.checkPaused(); err != nil {
		return err
	}
	if err := ledger.ValidateAddress(to); err != nil {
		return err
	}
	if err := ledger.ValidateAmount(amount); err != nil {
		return err
	}
	if t.BalanceOf(from).LT(amount) {
		return errorsmod.Wrapf(ledger.ErrInsufficientBalance,
			"%s holds %s %s, needs %s", from.Hex(), t.BalanceOf(from), t.name, amount)
	}
	if from == to {
		return nil
	}
	if err := t.distr.TransferDistribution(t.address, from, to, t.name, amount); err != nil {
		return err
	}
	t.setBalance(from, t.BalanceOf(from).Sub(amount))
	t.setBalance(to, t.BalanceOf(to).Add(amount))
	if t.events != nil {
		t.events.Append(ledger.Event{Type: ledger.EventTransfer, User: from, To: to, Amount: amount})
	}
	return nil
}

func (t *Token) setBalance(addr common.Address, amount sdkmath.Int) {
	if t.snapshotID > 0 {
		t.balanceCheckpoints[addr] = t.checkpoint(t.balanceCheckpoints[addr], t.BalanceOf(addr))
	}
	if amount.IsZero() {
		delete(t.balances, addr)
		return
	}
	t.balances[addr] = amount
}

func (t *Token) setSupply(amount sdkmath.Int) {
	if t.snapshotID > 0 {
		t.supplyCheckpoints = t.checkpoint(t.supplyCheckpoints, t.totalSupply)
	}
	t.totalSupply = amount
}

// checkpoint appends current unless history already holds the value of the
// latest snapshot.
func (t *Token) checkpoint(history []Checkpoint, current sdkmath.Int) []Checkpoint {
	if n := len(history); n > 0 && history[n-1].ID == t.snapshotID {
		return history
	}
	return append(history, Checkpoint{ID: t.snapshotID, Value: current})
}

// Snapshot starts a new snapshot and returns its id. Ids start at 1.
func (t *Token) Snapshot(caller common.Address) (uint64, error) {
	if caller != t.owner && caller != t.admin {
		return 0, errorsmod.Wrapf(ledger.ErrUnauthorized, "%s cannot snapshot", caller.Hex())
	}
	t.snapshotID++
	return t.snapshotID, nil
}

func (t *Token) SnapshotID() uint64 { return t.snapshotID }

// valueAt returns the value held at snapshot id: the first checkpoint
// written after it, or current when nothing changed since.
func (t *Token) valueAt(history []Checkpoint, id uint64, current sdkmath.Int) (sdkmath.Int, error) {
	if id == 0 || id > t.snapshotID {
		return sdkmath.Int{}, errorsmod.Wrapf(ledger.ErrNotFound, "snapshot %d", id)
	}
	i := sort.Search(len(history), func(i int) bool { return history[i].ID >= id })
	if i == len(history) {
		return current, nil
	}
	return history[i].Value, nil
}

func (t *Token) BalanceOfAt(addr common.Address, id uint64) (sdkmath.Int, error) {
	return t.valueAt(t.balanceCheckpoints[addr], id, t.BalanceOf(addr))
}

func (t *Token) TotalSupplyAt(id uint64) (sdkmath.Int, error) {
	return t.valueAt(t.supplyCheckpoints, id, t.totalSupply)
}
