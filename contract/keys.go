package contract

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

const (
	// kConfig stores the encoded Config record.
	kConfig byte = 0x01
	// kGlobal stores GlobalState (supply + accumulator).
	kGlobal byte = 0x02
	// kTokenVault tracks the collected tax token balance.
	kTokenVault byte = 0x03
	// kRewardVault tracks the reference currency waiting for claims.
	kRewardVault byte = 0x04
	// kUserInfo houses one UserInfo per holder.
	kUserInfo byte = 0x05
)

// recordKey builds a storage key from a prefix and the account address the record lives at.
func recordKey(prefix byte, addr solana.PublicKey) string {
	var buf [1 + solana.PublicKeyLength]byte
	buf[0] = prefix
	copy(buf[1:], addr[:])
	return string(buf[:])
}

// addresses are the program derived accounts of one managed mint. They never change so the
// contract derives them once.
type addresses struct {
	program solana.PublicKey
	mint    solana.PublicKey

	config      solana.PublicKey
	global      solana.PublicKey
	tokenVault  solana.PublicKey
	rewardVault solana.PublicKey

	configBump      uint8
	globalBump      uint8
	tokenVaultBump  uint8
	rewardVaultBump uint8
}

func derive(seed string, program, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress([][]byte{[]byte(seed), program[:], mint[:]}, program)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive %s address: %w", seed, err)
	}
	return addr, bump, nil
}

func deriveAddresses(program, mint solana.PublicKey) (addresses, error) {
	a := addresses{program: program, mint: mint}
	var err error
	if a.config, a.configBump, err = derive(seedConfig, program, mint); err != nil {
		return a, err
	}
	if a.global, a.globalBump, err = derive(seedGlobal, program, mint); err != nil {
		return a, err
	}
	if a.tokenVault, a.tokenVaultBump, err = derive(seedTokenVault, program, mint); err != nil {
		return a, err
	}
	if a.rewardVault, a.rewardVaultBump, err = derive(seedRewardVault, program, mint); err != nil {
		return a, err
	}
	return a, nil
}

// userAddress derives the UserInfo account of holder.
func (a addresses) userAddress(holder solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(
		[][]byte{[]byte(seedUser), a.program[:], holder[:], a.mint[:]},
		a.program,
	)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive user address for %s: %w", holder, err)
	}
	return addr, bump, nil
}

func (a addresses) configKey() string      { return recordKey(kConfig, a.config) }
func (a addresses) globalKey() string      { return recordKey(kGlobal, a.global) }
func (a addresses) tokenVaultKey() string  { return recordKey(kTokenVault, a.tokenVault) }
func (a addresses) rewardVaultKey() string { return recordKey(kRewardVault, a.rewardVault) }

func userKey(userAddr solana.PublicKey) string { return recordKey(kUserInfo, userAddr) }
