package distributor

import (
	"bytes"
	"sort"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/algem/liquid-staking-service/internal/ledger"
)

type Direction int

const (
	Increase Direction = iota
	Decrease
)

func (d Direction) String() string {
	if d == Increase {
		return "increase"
	}
	return "decrease"
}

// TokenRef is the receipt token a dnt name is bound to.
type TokenRef interface {
	Address() common.Address
	BalanceOf(addr common.Address) sdkmath.Int
	TotalSupply() sdkmath.Int
}

// Listener is notified after every change of a (user, utility, dnt)
// allocation with the balance before and after the change.
type Listener interface {
	OnDistributionChanged(user common.Address, utility, dnt string, before, after sdkmath.Int)
}

type Utility struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type Dnt struct {
	Name    string         `json:"name"`
	Address common.Address `json:"address"`
	Active  bool           `json:"active"`
	token   TokenRef
}

// Distributor tracks how much of each receipt token a user has allocated to
// every utility. It is not safe for concurrent use.
type Distributor struct {
	acl *ledger.ACL

	utilities     []*Utility
	utilityByName map[string]*Utility
	disallowed    map[string]struct{}
	dnts          map[string]*Dnt

	// dnt -> user -> utility -> amount
	balances    map[string]map[common.Address]map[string]sdkmath.Int
	totalDnt    map[string]sdkmath.Int
	totalInUtil map[string]map[string]sdkmath.Int

	liquidStaking common.Address
	listener      Listener
}

func New(admin common.Address) *Distributor {
	return &Distributor{
		acl:           ledger.NewACL(admin),
		utilityByName: make(map[string]*Utility),
		disallowed:    make(map[string]struct{}),
		dnts:          make(map[string]*Dnt),
		balances:      make(map[string]map[common.Address]map[string]sdkmath.Int),
		totalDnt:      make(map[string]sdkmath.Int),
		totalInUtil:   make(map[string]map[string]sdkmath.Int),
	}
}

func (d *Distributor) ACL() *ledger.ACL {
	return d.acl
}

func (d *Distributor) AddUtility(caller common.Address, name string) (uint64, error) {
	if err := d.acl.Require(caller, ledger.RoleAdmin, ledger.RoleManager); err != nil {
		return 0, err
	}
	if name == "" {
		return 0, errorsmod.Wrap(ledger.ErrInvalidAmount, "empty utility name")
	}
	if _, ok := d.disallowed[name]; ok {
		return 0, errorsmod.Wrapf(ledger.ErrUnauthorized, "utility name %q is disallowed", name)
	}
	if _, ok := d.utilityByName[name]; ok {
		return 0, errorsmod.Wrapf(ledger.ErrAlreadyExists, "utility %q", name)
	}
	u := &Utility{ID: uint64(len(d.utilities)), Name: name, Active: true}
	d.utilities = append(d.utilities, u)
	d.utilityByName[name] = u
	return u.ID, nil
}

func (d *Distributor) AddUtilityToDisallowList(caller common.Address, name string) error {
	if err := d.acl.Require(caller, ledger.RoleAdmin); err != nil {
		return err
	}
	if _, ok := d.disallowed[name]; ok {
		return errorsmod.Wrapf(ledger.ErrAlreadyExists, "utility name %q already disallowed", name)
	}
	d.disallowed[name] = struct{}{}
	return nil
}

func (d *Distributor) SetUtilityStatus(caller common.Address, name string, active bool) error {
	if err := d.acl.Require(caller, ledger.RoleAdmin, ledger.RoleManager); err != nil {
		return err
	}
	u, err := d.Utility(name)
	if err != nil {
		return err
	}
	u.Active = active
	return nil
}

func (d *Distributor) AddDnt(caller common.Address, name string, token TokenRef) error {
	if err := d.acl.Require(caller, ledger.RoleAdmin, ledger.RoleManager); err != nil {
		return err
	}
	if name == "" || token == nil {
		return errorsmod.Wrap(ledger.ErrInvalidAddress, "dnt name and token are required")
	}
	if err := ledger.ValidateAddress(token.Address()); err != nil {
		return err
	}
	if _, ok := d.dnts[name]; ok {
		return errorsmod.Wrapf(ledger.ErrAlreadyExists, "dnt %q", name)
	}
	d.dnts[name] = &Dnt{Name: name, Address: token.Address(), Active: true, token: token}
	return nil
}

func (d *Distributor) ChangeDntAddress(caller common.Address, name string, token TokenRef) error {
	if err := d.acl.Require(caller, ledger.RoleAdmin, ledger.RoleManager); err != nil {
		return err
	}
	if token == nil {
		return errorsmod.Wrap(ledger.ErrInvalidAddress, "nil token")
	}
	if err := ledger.ValidateAddress(token.Address()); err != nil {
		return err
	}
	dnt, err := d.dnt(name)
	if err != nil {
		return err
	}
	dnt.Address = token.Address()
	dnt.token = token
	return nil
}

func (d *Distributor) SetDntStatus(caller common.Address, name string, active bool) error {
	if err := d.acl.Require(caller, ledger.RoleAdmin, ledger.RoleManager); err != nil {
		return err
	}
	dnt, err := d.dnt(name)
	if err != nil {
		return err
	}
	dnt.Active = active
	return nil
}

func (d *Distributor) AddManager(caller, addr common.Address) error {
	if err := d.acl.Require(caller, ledger.RoleAdmin); err != nil {
		return err
	}
	return d.acl.Grant(ledger.RoleManager, addr)
}

func (d *Distributor) RemoveManager(caller, addr common.Address) error {
	if err := d.acl.Require(caller, ledger.RoleAdmin); err != nil {
		return err
	}
	return d.acl.Revoke(ledger.RoleManager, addr)
}

func (d *Distributor) ChangeManagerAddress(caller, old, replacement common.Address) error {
	if err := d.acl.Require(caller, ledger.RoleAdmin); err != nil {
		return err
	}
	if err := ledger.ValidateAddress(replacement); err != nil {
		return err
	}
	if !d.acl.Has(ledger.RoleManager, old) {
		return errorsmod.Wrapf(ledger.ErrNotFound, "%s is not a manager", old.Hex())
	}
	if d.acl.Has(ledger.RoleManager, replacement) {
		return errorsmod.Wrapf(ledger.ErrAlreadyExists, "%s is already a manager", replacement.Hex())
	}
	_ = d.acl.Revoke(ledger.RoleManager, old)
	return d.acl.Grant(ledger.RoleManager, replacement)
}

// SetLiquidStaking binds the staking engine. The reference can be set once.
func (d *Distributor) SetLiquidStaking(caller, engine common.Address, listener Listener) error {
	if err := d.acl.Require(caller, ledger.RoleAdmin); err != nil {
		return err
	}
	if d.liquidStaking != (common.Address{}) {
		return errorsmod.Wrapf(ledger.ErrImmutable, "liquid staking already set to %s", d.liquidStaking.Hex())
	}
	if err := ledger.ValidateAddress(engine); err != nil {
		return err
	}
	d.liquidStaking = engine
	d.listener = listener
	return nil
}

func (d *Distributor) LiquidStaking() common.Address {
	return d.liquidStaking
}

// ValidateUpdate reports the error UpdateDistribution would return without
// changing any state.
func (d *Distributor) ValidateUpdate(
	caller, user common.Address, utility, dntName string, amount sdkmath.Int, dir Direction,
) error {
	if err := d.acl.Require(caller, ledger.RoleManager); err != nil {
		return err
	}
	if err := ledger.ValidateAddress(user); err != nil {
		return err
	}
	if err := ledger.ValidateAmount(amount); err != nil {
		return err
	}
	dnt, err := d.dnt(dntName)
	if err != nil {
		return err
	}
	if _, err := d.Utility(utility); err != nil {
		return err
	}
	switch dir {
	case Increase:
		if !dnt.Active {
			return errorsmod.Wrapf(ledger.ErrPaused, "dnt %q is inactive", dntName)
		}
	case Decrease:
		if bal := d.GetUserDntBalanceInUtil(user, utility, dntName); bal.LT(amount) {
			return errorsmod.Wrapf(ledger.ErrInsufficientBalance,
				"%s holds %s %s in %q, needs %s", user.Hex(), bal, dntName, utility, amount)
		}
	default:
		return errorsmod.Wrapf(ledger.ErrInvalidAmount, "unknown direction %d", dir)
	}
	return nil
}

func (d *Distributor) UpdateDistribution(
	caller, user common.Address, utility, dntName string, amount sdkmath.Int, dir Direction,
) error {
	if err := d.ValidateUpdate(caller, user, utility, dntName, amount, dir); err != nil {
		return err
	}
	if dir == Increase {
		d.add(user, utility, dntName, amount)
	} else {
		d.sub(user, utility, dntName, amount)
	}
	return nil
}

// ValidateTransfer reports the error TransferDistribution would return
// without changing any state.
func (d *Distributor) ValidateTransfer(caller, from, to common.Address, dntName string, amount sdkmath.Int) error {
	if err := d.acl.Require(caller, ledger.RoleManager); err != nil {
		return err
	}
	if err := ledger.ValidateAddress(from); err != nil {
		return err
	}
	if err := ledger.ValidateAddress(to); err != nil {
		return err
	}
	if err := ledger.ValidateAmount(amount); err != nil {
		return err
	}
	dnt, err := d.dnt(dntName)
	if err != nil {
		return err
	}
	if !dnt.Active {
		return errorsmod.Wrapf(ledger.ErrPaused, "dnt %q is inactive", dntName)
	}
	if bal := d.userTotal(from, dntName); bal.LT(amount) {
		return errorsmod.Wrapf(ledger.ErrInsufficientBalance,
			"%s holds %s %s, needs %s", from.Hex(), bal, dntName, amount)
	}
	return nil
}

// TransferDistribution moves amount of from's allocation to to, keeping the
// utility proportions of from. Every utility first receives
// floor(amount * share / balance); the remaining units go one each to the
// utilities with the largest remainders, ties broken by utility id.
func (d *Distributor) TransferDistribution(caller, from, to common.Address, dntName string, amount sdkmath.Int) error {
	if err := d.ValidateTransfer(caller, from, to, dntName, amount); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	for _, m := range d.splitTransfer(from, dntName, amount) {
		d.sub(from, m.utility, dntName, m.amount)
		d.add(to, m.utility, dntName, m.amount)
	}
	return nil
}

type move struct {
	utility   string
	id        uint64
	amount    sdkmath.Int
	remainder sdkmath.Int
}

func (d *Distributor) splitTransfer(from common.Address, dntName string, amount sdkmath.Int) []move {
	balance := d.userTotal(from, dntName)
	moves := make([]move, 0)
	assigned := sdkmath.ZeroInt()
	for _, u := range d.ListUserUtilities(from, dntName) {
		share := d.GetUserDntBalanceInUtil(from, u.Name, dntName)
		scaled := amount.Mul(share)
		q := scaled.Quo(balance)
		moves = append(moves, move{
			utility:   u.Name,
			id:        u.ID,
			amount:    q,
			remainder: scaled.Sub(q.Mul(balance)),
		})
		assigned = assigned.Add(q)
	}

	leftover := amount.Sub(assigned)
	if leftover.IsPositive() {
		order := make([]int, len(moves))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool {
			a, b := moves[order[i]], moves[order[j]]
			if !a.remainder.Equal(b.remainder) {
				return a.remainder.GT(b.remainder)
			}
			return a.id < b.id
		})
		for _, idx := range order {
			if !leftover.IsPositive() {
				break
			}
			moves[idx].amount = moves[idx].amount.AddRaw(1)
			leftover = leftover.SubRaw(1)
		}
	}

	out := moves[:0]
	for _, m := range moves {
		if m.amount.IsPositive() {
			out = append(out, m)
		}
	}
	return out
}

func (d *Distributor) add(user common.Address, utility, dntName string, amount sdkmath.Int) {
	before := d.GetUserDntBalanceInUtil(user, utility, dntName)
	after := before.Add(amount)
	d.setBalance(user, utility, dntName, after)
	d.totalDnt[dntName] = d.TotalDnt(dntName).Add(amount)
	d.setTotalInUtil(utility, dntName, d.TotalDntInUtil(utility, dntName).Add(amount))
	d.notify(user, utility, dntName, before, after)
}

func (d *Distributor) sub(user common.Address, utility, dntName string, amount sdkmath.Int) {
	before := d.GetUserDntBalanceInUtil(user, utility, dntName)
	after := before.Sub(amount)
	d.setBalance(user, utility, dntName, after)
	d.totalDnt[dntName] = d.TotalDnt(dntName).Sub(amount)
	d.setTotalInUtil(utility, dntName, d.TotalDntInUtil(utility, dntName).Sub(amount))
	d.notify(user, utility, dntName, before, after)
}

func (d *Distributor) notify(user common.Address, utility, dntName string, before, after sdkmath.Int) {
	if d.listener != nil {
		d.listener.OnDistributionChanged(user, utility, dntName, before, after)
	}
}

func (d *Distributor) setBalance(user common.Address, utility, dntName string, amount sdkmath.Int) {
	users := d.balances[dntName]
	if users == nil {
		users = make(map[common.Address]map[string]sdkmath.Int)
		d.balances[dntName] = users
	}
	if amount.IsZero() {
		delete(users[user], utility)
		if len(users[user]) == 0 {
			delete(users, user)
		}
		return
	}
	if users[user] == nil {
		users[user] = make(map[string]sdkmath.Int)
	}
	users[user][utility] = amount
}

func (d *Distributor) setTotalInUtil(utility, dntName string, amount sdkmath.Int) {
	if d.totalInUtil[dntName] == nil {
		d.totalInUtil[dntName] = make(map[string]sdkmath.Int)
	}
	d.totalInUtil[dntName][utility] = amount
}

func (d *Distributor) userTotal(user common.Address, dntName string) sdkmath.Int {
	total := sdkmath.ZeroInt()
	for _, bal := range d.balances[dntName][user] {
		total = total.Add(bal)
	}
	return total
}

func (d *Distributor) dnt(name string) (*Dnt, error) {
	dnt, ok := d.dnts[name]
	if !ok {
		return nil, errorsmod.Wrapf(ledger.ErrNotFound, "dnt %q", name)
	}
	return dnt, nil
}

func (d *Distributor) Dnt(name string) (Dnt, error) {
	dnt, err := d.dnt(name)
	if err != nil {
		return Dnt{}, err
	}
	return *dnt, nil
}

func (d *Distributor) Utility(name string) (*Utility, error) {
	u, ok := d.utilityByName[name]
	if !ok {
		return nil, errorsmod.Wrapf(ledger.ErrNotFound, "utility %q", name)
	}
	return u, nil
}

func (d *Distributor) UtilityID(name string) (uint64, error) {
	u, err := d.Utility(name)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

func (d *Distributor) ListUtilities() []Utility {
	out := make([]Utility, 0, len(d.utilities))
	for _, u := range d.utilities {
		out = append(out, *u)
	}
	return out
}

// ListUserUtilities returns the utilities in which user holds a non-zero
// allocation of dnt, ordered by utility id.
func (d *Distributor) ListUserUtilities(user common.Address, dntName string) []Utility {
	held := d.balances[dntName][user]
	out := make([]Utility, 0, len(held))
	for _, u := range d.utilities {
		if _, ok := held[u.Name]; ok {
			out = append(out, *u)
		}
	}
	return out
}

// Users returns every holder of a non-zero dnt allocation sorted by address.
func (d *Distributor) Users(dntName string) []common.Address {
	out := make([]common.Address, 0, len(d.balances[dntName]))
	for user := range d.balances[dntName] {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Bytes(), out[j].Bytes()) < 0
	})
	return out
}

func (d *Distributor) TotalDnt(dntName string) sdkmath.Int {
	return ledger.OrZero(d.totalDnt[dntName])
}

func (d *Distributor) TotalDntInUtil(utility, dntName string) sdkmath.Int {
	return ledger.OrZero(d.totalInUtil[dntName][utility])
}

func (d *Distributor) GetUserDntBalanceInUtil(user common.Address, utility, dntName string) sdkmath.Int {
	return ledger.OrZero(d.balances[dntName][user][utility])
}

// CheckConservation verifies that every holder's allocation of dnt sums to
// its receipt token balance and that the totals match the token supply.
func (d *Distributor) CheckConservation(dntName string) error {
	dnt, err := d.dnt(dntName)
	if err != nil {
		return err
	}
	if dnt.token == nil {
		return errorsmod.Wrapf(ledger.ErrNotFound, "dnt %q has no bound token", dntName)
	}
	for user := range d.balances[dntName] {
		allocated := d.userTotal(user, dntName)
		if held := dnt.token.BalanceOf(user); !allocated.Equal(held) {
			return errorsmod.Wrapf(ledger.ErrInsufficientBalance,
				"%s allocated %s %s but holds %s", user.Hex(), allocated, dntName, held)
		}
	}
	if supply := dnt.token.TotalSupply(); !d.TotalDnt(dntName).Equal(supply) {
		return errorsmod.Wrapf(ledger.ErrInsufficientBalance,
			"total %s allocated %s, supply %s", dntName, d.TotalDnt(dntName), supply)
	}
	return nil
}
