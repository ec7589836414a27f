package client

import (
	"context"
	"fmt"

	"github.com/kaigouthro/nimbus/internal/http"
	"github.com/kaigouthro/nimbus/pkg/openstack"
)

type rawSecurityGroupRule struct {
	ID              string  `json:"id"`
	SecurityGroupID string  `json:"security_group_id"`
	Direction       string  `json:"direction"`
	Ethertype       string  `json:"ethertype"`
	Protocol        *string `json:"protocol"`
	PortRangeMin    *int    `json:"port_range_min"`
	PortRangeMax    *int    `json:"port_range_max"`
	RemoteIPPrefix  *string `json:"remote_ip_prefix"`
	RemoteGroupID   *string `json:"remote_group_id"`
	Description     *string `json:"description"`
}

// rawSecurityGroup carries rules under either key; deployments differ.
type rawSecurityGroup struct {
	ID                 string                 `json:"id"`
	Name               string                 `json:"name"`
	Description        string                 `json:"description"`
	ProjectID          string                 `json:"project_id"`
	TenantID           string                 `json:"tenant_id"`
	SecurityGroupRules []rawSecurityGroupRule `json:"security_group_rules"`
	Rules              []rawSecurityGroupRule `json:"rules"`
}

func toSecurityGroupRule(raw *rawSecurityGroupRule) openstack.SecurityGroupRule {
	return openstack.SecurityGroupRule{
		ID:              raw.ID,
		SecurityGroupID: raw.SecurityGroupID,
		Direction:       raw.Direction,
		Ethertype:       raw.Ethertype,
		Protocol:        raw.Protocol,
		PortRangeMin:    raw.PortRangeMin,
		PortRangeMax:    raw.PortRangeMax,
		RemoteIPPrefix:  raw.RemoteIPPrefix,
		RemoteGroupID:   raw.RemoteGroupID,
		Description:     stringValue(raw.Description),
	}
}

func toSecurityGroup(raw *rawSecurityGroup) openstack.SecurityGroup {
	rules := raw.SecurityGroupRules
	if rules == nil {
		rules = raw.Rules
	}

	projectID := raw.ProjectID
	if projectID == "" {
		projectID = raw.TenantID
	}

	group := openstack.SecurityGroup{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		ProjectID:   projectID,
		Rules:       make([]openstack.SecurityGroupRule, 0, len(rules)),
	}

	for i := range rules {
		group.Rules = append(group.Rules, toSecurityGroupRule(&rules[i]))
	}

	return group
}

// SecurityGroupsClient implements openstack.SecurityGroupsClient.
type SecurityGroupsClient struct {
	httpClient *http.Client
	resolver   resolver
}

// NewSecurityGroupsClient creates a new security group client.
func NewSecurityGroupsClient(httpClient *http.Client, r resolver) *SecurityGroupsClient {
	return &SecurityGroupsClient{
		httpClient: httpClient,
		resolver:   r,
	}
}

// List implements openstack.SecurityGroupsClient.List.
func (c *SecurityGroupsClient) List(ctx context.Context, session *openstack.Session) ([]openstack.SecurityGroup, error) {
	endpoint, err := networkURL(c.resolver, session, "security-groups")
	if err != nil {
		return nil, fmt.Errorf("listing security groups: %w", err)
	}

	resp, err := c.httpClient.Get(ctx, openstack.ServiceNetwork, endpoint, session.Token, nil)
	if err != nil {
		return nil, fmt.Errorf("listing security groups: %w", err)
	}

	var body struct {
		SecurityGroups []rawSecurityGroup `json:"security_groups"`
	}

	err = decode(resp, &body, "security groups list")
	if err != nil {
		return nil, err
	}

	groups := make([]openstack.SecurityGroup, 0, len(body.SecurityGroups))
	for i := range body.SecurityGroups {
		groups = append(groups, toSecurityGroup(&body.SecurityGroups[i]))
	}

	return groups, nil
}

// Create implements openstack.SecurityGroupsClient.Create.
func (c *SecurityGroupsClient) Create(ctx context.Context, session *openstack.Session, request *openstack.CreateSecurityGroupRequest) (*openstack.SecurityGroup, error) {
	err := request.Validate()
	if err != nil {
		return nil, err
	}

	endpoint, err := networkURL(c.resolver, session, "security-groups")
	if err != nil {
		return nil, fmt.Errorf("creating security group: %w", err)
	}

	payload := map[string]any{
		"security_group": map[string]string{
			"name":        request.Name,
			"description": request.Description,
		},
	}

	resp, err := c.httpClient.Post(ctx, openstack.ServiceNetwork, endpoint, session.Token, payload)
	if err != nil {
		return nil, fmt.Errorf("creating security group: %w", err)
	}

	var body struct {
		SecurityGroup rawSecurityGroup `json:"security_group"`
	}

	err = decode(resp, &body, "created security group")
	if err != nil {
		return nil, err
	}

	group := toSecurityGroup(&body.SecurityGroup)

	return &group, nil
}

// Delete implements openstack.SecurityGroupsClient.Delete.
func (c *SecurityGroupsClient) Delete(ctx context.Context, session *openstack.Session, securityGroupID string) error {
	err := openstack.RequireID("security_group_id", securityGroupID)
	if err != nil {
		return err
	}

	endpoint, err := networkURL(c.resolver, session, "security-groups/"+securityGroupID)
	if err != nil {
		return fmt.Errorf("deleting security group: %w", err)
	}

	_, err = c.httpClient.Delete(ctx, openstack.ServiceNetwork, endpoint, session.Token)
	if err != nil {
		return fmt.Errorf("deleting security group: %w", err)
	}

	return nil
}

type createRulePayload struct {
	SecurityGroupID string  `json:"security_group_id"`
	Direction       string  `json:"direction"`
	Ethertype       string  `json:"ethertype,omitempty"`
	Protocol        *string `json:"protocol"`
	PortRangeMin    *int    `json:"port_range_min,omitempty"`
	PortRangeMax    *int    `json:"port_range_max,omitempty"`
	RemoteIPPrefix  *string `json:"remote_ip_prefix,omitempty"`
	RemoteGroupID   *string `json:"remote_group_id,omitempty"`
	Description     string  `json:"description,omitempty"`
}

// AddRule implements openstack.SecurityGroupsClient.AddRule.
func (c *SecurityGroupsClient) AddRule(ctx context.Context, session *openstack.Session, request *openstack.CreateSecurityGroupRuleRequest) (*openstack.SecurityGroupRule, error) {
	err := request.Validate()
	if err != nil {
		return nil, err
	}

	endpoint, err := networkURL(c.resolver, session, "security-group-rules")
	if err != nil {
		return nil, fmt.Errorf("adding security group rule: %w", err)
	}

	ethertype := request.Ethertype
	if ethertype == "" {
		ethertype = "IPv4"
	}

	payload := map[string]any{
		"security_group_rule": createRulePayload{
			SecurityGroupID: request.SecurityGroupID,
			Direction:       request.Direction,
			Ethertype:       ethertype,
			Protocol:        request.Protocol,
			PortRangeMin:    request.PortRangeMin,
			PortRangeMax:    request.PortRangeMax,
			RemoteIPPrefix:  request.RemoteIPPrefix,
			RemoteGroupID:   request.RemoteGroupID,
			Description:     request.Description,
		},
	}

	resp, err := c.httpClient.Post(ctx, openstack.ServiceNetwork, endpoint, session.Token, payload)
	if err != nil {
		return nil, fmt.Errorf("adding security group rule: %w", err)
	}

	var body struct {
		SecurityGroupRule rawSecurityGroupRule `json:"security_group_rule"`
	}

	err = decode(resp, &body, "created security group rule")
	if err != nil {
		return nil, err
	}

	rule := toSecurityGroupRule(&body.SecurityGroupRule)

	return &rule, nil
}

// DeleteRule implements openstack.SecurityGroupsClient.DeleteRule.
func (c *SecurityGroupsClient) DeleteRule(ctx context.Context, session *openstack.Session, ruleID string) error {
	err := openstack.RequireID("rule_id", ruleID)
	if err != nil {
		return err
	}

	endpoint, err := networkURL(c.resolver, session, "security-group-rules/"+ruleID)
	if err != nil {
		return fmt.Errorf("deleting security group rule: %w", err)
	}

	_, err = c.httpClient.Delete(ctx, openstack.ServiceNetwork, endpoint, session.Token)
	if err != nil {
		return fmt.Errorf("deleting security group rule: %w", err)
	}

	return nil
}
