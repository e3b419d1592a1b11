package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pilacorp/go-did-sdk/credential/common/codec"
	"github.com/pilacorp/go-did-sdk/credential/common/logging"
	"github.com/pilacorp/go-did-sdk/did"
)

const (
	encodingHex       = "hex"
	encodingBase58    = "base58"
	encodingMultibase = "multibase"
)

func createKeyCommand(cfg *Config) *cobra.Command {
	var encoding string
	command := &cobra.Command{
		Use:   "key file [keyID]",
		Short: "Print the public key bytes of the verification methods of a DID document",
		Long: "Print one line per verification method: its id, type, the Go key type and the encoded key bytes.\n" +
			"When keyID is given (absolute or a #fragment), only that method is printed. Use - to read stdin.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			encode, err := keyEncoder(encoding)
			if err != nil {
				return err
			}

			data, err := readInput(cmd, args[0], cfg.MaxBytes)
			if err != nil {
				return err
			}
			doc, err := did.ParseDocument(data)
			if err != nil {
				return err
			}

			methods := doc.VerificationMethods()
			if len(args) == 2 {
				vm, ok := doc.VerificationMethodByID(args[1])
				if !ok {
					return fmt.Errorf("verification method '%s' not found in '%s'", args[1], doc.ID())
				}
				methods = []*did.VerificationMethod{vm}
			}

			for _, vm := range methods {
				line, err := describeKey(vm, encode)
				if err != nil {
					return err
				}
				cmd.Println(line)
			}
			return nil
		},
	}
	command.Flags().StringVar(&encoding, "encoding", encodingHex, "Key encoding (hex, base58, multibase)")
	return command
}

func keyEncoder(encoding string) (func([]byte) string, error) {
	switch encoding {
	case encodingHex:
		return hex.EncodeToString, nil
	case encodingBase58:
		return codec.Base58Encode, nil
	case encodingMultibase:
		return codec.MultibaseEncode, nil
	}
	return nil, fmt.Errorf("invalid encoding: '%s'", encoding)
}

func describeKey(vm *did.VerificationMethod, encode func([]byte) string) (string, error) {
	raw, err := vm.PublicKeyBytes()
	if err != nil {
		return "", fmt.Errorf("verification method '%s': %w", vm.ID(), err)
	}

	keyType := "-"
	if key, err := vm.PublicKey(); err == nil {
		keyType = fmt.Sprintf("%T", key)
	} else {
		logging.Log().
			WithError(err).
			WithField(logging.FieldKeyID, vm.ID()).
			Debug("Could not decode public key")
	}

	return strings.Join([]string{vm.ID(), vm.Type(), keyType, encode(raw)}, "\t"), nil
}
