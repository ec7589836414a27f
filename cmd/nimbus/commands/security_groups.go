package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kaigouthro/nimbus/internal/constants"
	"github.com/kaigouthro/nimbus/pkg/openstack"
	"github.com/spf13/cobra"
)

// NewSecurityGroupsCommand creates the security-groups command group.
func NewSecurityGroupsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "security-groups",
		Aliases: []string{"security-group", "sg"},
		Short:   "Manage security groups",
	}

	cmd.AddCommand(newSecurityGroupsListCommand())
	cmd.AddCommand(newSecurityGroupsCreateCommand())
	cmd.AddCommand(newSecurityGroupsDeleteCommand())
	cmd.AddCommand(newSecurityGroupsAddRuleCommand())
	cmd.AddCommand(newSecurityGroupsDeleteRuleCommand())

	return cmd
}

func newSecurityGroupsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List security groups and their rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			groups, err := gw.client.SecurityGroups().List(cmd.Context(), gw.session)
			if err != nil {
				return fmt.Errorf("failed to list security groups: %w", err)
			}

			renderer := &OutputRenderer[[]openstack.SecurityGroup]{RenderTable: renderSecurityGroupsTable}

			return renderer.Render(groups)
		},
	}
}

func renderSecurityGroupsTable(groups []openstack.SecurityGroup) error {
	if len(groups) == 0 {
		return printEmpty("security groups")
	}

	table := newTable("Group", "Rule ID", "Direction", "Ethertype", "Protocol", "Ports", "Remote")

	for _, group := range groups {
		if len(group.Rules) == 0 {
			_ = table.Append(group.Name, None, None, None, None, None, None)

			continue
		}

		for _, rule := range group.Rules {
			_ = table.Append(
				group.Name,
				rule.ID,
				rule.Direction,
				rule.Ethertype,
				formatProtocol(rule.Protocol),
				formatPorts(rule.PortRangeMin, rule.PortRangeMax),
				formatRemote(rule),
			)
		}
	}

	return renderTable(table)
}

func formatProtocol(protocol *string) string {
	if protocol == nil {
		return "any"
	}

	return *protocol
}

func formatPorts(minPort, maxPort *int) string {
	switch {
	case minPort == nil && maxPort == nil:
		return "any"
	case minPort != nil && maxPort != nil && *minPort == *maxPort:
		return strconv.Itoa(*minPort)
	default:
		return ptrOrNone(minPort) + "-" + ptrOrNone(maxPort)
	}
}

func formatRemote(rule openstack.SecurityGroupRule) string {
	if rule.RemoteIPPrefix != nil {
		return *rule.RemoteIPPrefix
	}

	if rule.RemoteGroupID != nil {
		return "group " + *rule.RemoteGroupID
	}

	return None
}

func newSecurityGroupsCreateCommand() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a security group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			group, err := gw.client.SecurityGroups().Create(cmd.Context(), gw.session,
				&openstack.CreateSecurityGroupRequest{Name: args[0], Description: description})
			if err != nil {
				return fmt.Errorf("failed to create security group: %w", err)
			}

			return gw.accepted("security-group-create", group.ID, map[string]string{"name": group.Name})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "description")

	return cmd
}

func newSecurityGroupsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete SECURITY_GROUP_ID",
		Short: "Delete a security group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			err = gw.client.SecurityGroups().Delete(cmd.Context(), gw.session, args[0])
			if err != nil {
				return fmt.Errorf("failed to delete security group: %w", err)
			}

			return gw.accepted("security-group-delete", args[0], nil)
		},
	}
}

type ruleFlags struct {
	direction   string
	ethertype   string
	protocol    string
	ports       string
	remoteIP    string
	remoteGroup string
	description string
}

func (f *ruleFlags) request(securityGroupID string) (*openstack.CreateSecurityGroupRuleRequest, error) {
	direction := strings.ToLower(f.direction)
	if direction != openstack.DirectionIngress && direction != openstack.DirectionEgress {
		return nil, fmt.Errorf("%w: %q", constants.ErrInvalidDirection, f.direction)
	}

	request := &openstack.CreateSecurityGroupRuleRequest{
		SecurityGroupID: securityGroupID,
		Direction:       direction,
		Ethertype:       f.ethertype,
		Description:     f.description,
	}

	if f.protocol != "" && f.protocol != "any" {
		request.Protocol = &f.protocol
	}

	if f.ports != "" {
		minPort, maxPort, err := parsePortRange(f.ports)
		if err != nil {
			return nil, err
		}

		request.PortRangeMin = &minPort
		request.PortRangeMax = &maxPort
	}

	if f.remoteIP != "" {
		request.RemoteIPPrefix = &f.remoteIP
	}

	if f.remoteGroup != "" {
		request.RemoteGroupID = &f.remoteGroup
	}

	return request, nil
}

// parsePortRange accepts "22" or "8000-8080".
func parsePortRange(s string) (int, int, error) {
	low, high, isRange := strings.Cut(s, "-")
	if !isRange {
		high = low
	}

	minPort, err := strconv.Atoi(strings.TrimSpace(low))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", constants.ErrInvalidPort, s)
	}

	maxPort, err := strconv.Atoi(strings.TrimSpace(high))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", constants.ErrInvalidPort, s)
	}

	return minPort, maxPort, nil
}

func newSecurityGroupsAddRuleCommand() *cobra.Command {
	var flags ruleFlags

	cmd := &cobra.Command{
		Use:   "add-rule SECURITY_GROUP_ID",
		Short: "Add a rule to a security group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request, err := flags.request(args[0])
			if err != nil {
				return err
			}

			gw, err := newGateway()
			if err != nil {
				return err
			}

			rule, err := gw.client.SecurityGroups().AddRule(cmd.Context(), gw.session, request)
			if err != nil {
				return fmt.Errorf("failed to add rule: %w", err)
			}

			return gw.accepted("security-group-rule-create", rule.ID, map[string]string{"security_group_id": args[0]})
		},
	}

	cmd.Flags().StringVar(&flags.direction, "direction", openstack.DirectionIngress, "ingress or egress")
	cmd.Flags().StringVar(&flags.ethertype, "ethertype", "IPv4", "IPv4 or IPv6")
	cmd.Flags().StringVar(&flags.protocol, "protocol", "", "tcp, udp, icmp or any")
	cmd.Flags().StringVar(&flags.ports, "port", "", "port or range, e.g. 22 or 8000-8080")
	cmd.Flags().StringVar(&flags.remoteIP, "remote-ip", "", "remote CIDR")
	cmd.Flags().StringVar(&flags.remoteGroup, "remote-group", "", "remote security group ID")
	cmd.Flags().StringVar(&flags.description, "description", "", "description")

	return cmd
}

func newSecurityGroupsDeleteRuleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-rule RULE_ID",
		Short: "Delete a security group rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			err = gw.client.SecurityGroups().DeleteRule(cmd.Context(), gw.session, args[0])
			if err != nil {
				return fmt.Errorf("failed to delete rule: %w", err)
			}

			return gw.accepted("security-group-rule-delete", args[0], nil)
		},
	}
}
